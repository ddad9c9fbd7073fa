package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")

	jsonBody := `{
		"app": {
			"name": "FitTrack",
			"cache_version": "fittrack-v7",
			"hash_key": "security_hash",
			"log_level": "info"
		},
		"adapter": {
			"http_address": "https://api.example.com",
			"api_base": "/api",
			"request_timeout": "30s"
		},
		"proxy": {
			"listen_address": "localhost:8081",
			"static_manifest": ["/", "/offline.html"],
			"offline_page": "/offline.html",
			"api_patterns": ["/api/workouts/**"]
		},
		"queue": { "capacity": 10, "max_retries": 2 },
		"workers": { "settle_delay": "500ms" },
		"storage": { "db": { "dsn": "offline.db" } }
	}`

	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "FitTrack", cfg.App.Name)
	assert.Equal(t, "fittrack-v7", cfg.App.CacheVersion)
	assert.Equal(t, "security_hash", cfg.App.HashKey)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "https://api.example.com", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, []string{"/", "/offline.html"}, cfg.Proxy.StaticManifest)
	assert.Equal(t, "/offline.html", cfg.Proxy.OfflinePage)
	assert.Equal(t, []string{"/api/workouts/**"}, cfg.Proxy.APIPatterns)
	assert.Equal(t, 10, cfg.Queue.Capacity)
	assert.Equal(t, 2, cfg.Queue.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Workers.SettleDelay)
	assert.Equal(t, "offline.db", cfg.Storage.DB.DSN)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_BadDuration(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"workers":{"settle_delay":"soon"}}`), 0o600))

	_, err := parseJSON(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestDuration_UnmarshalJSON_Number(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`1000000000`)))
	assert.Equal(t, time.Second, time.Duration(d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := Duration(90 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}
