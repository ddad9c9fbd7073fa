package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] in the on-disk JSON layout.
type StructuredJSONConfig struct {
	App struct {
		Name         string `json:"name"`
		CacheVersion string `json:"cache_version"`
		DefaultIcon  string `json:"default_icon"`
		DefaultBadge string `json:"default_badge"`
		HashKey      string `json:"hash_key"`
		LogLevel     string `json:"log_level"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		APIBase        string   `json:"api_base"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Proxy struct {
		ListenAddress  string   `json:"listen_address"`
		StaticManifest []string `json:"static_manifest"`
		OfflinePage    string   `json:"offline_page"`
		StaticSuffixes []string `json:"static_suffixes"`
		ImageSuffixes  []string `json:"image_suffixes"`
		APIPatterns    []string `json:"api_patterns"`
		AllowedOrigins []string `json:"allowed_origins"`
	} `json:"proxy,omitempty"`

	Queue struct {
		Capacity       int `json:"capacity"`
		MaxRetries     int `json:"max_retries"`
		CommitAttempts int `json:"commit_attempts"`
	} `json:"queue,omitempty"`

	Workers struct {
		SettleDelay Duration `json:"settle_delay"`
	} `json:"workers,omitempty"`

	Push struct {
		EndpointBase string `json:"endpoint_base"`
	} `json:"push,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Name:         jsonCfg.App.Name,
			CacheVersion: jsonCfg.App.CacheVersion,
			DefaultIcon:  jsonCfg.App.DefaultIcon,
			DefaultBadge: jsonCfg.App.DefaultBadge,
			HashKey:      jsonCfg.App.HashKey,
			LogLevel:     jsonCfg.App.LogLevel,
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			APIBase:        jsonCfg.Adapter.APIBase,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Proxy: Proxy{
			ListenAddress:  jsonCfg.Proxy.ListenAddress,
			StaticManifest: jsonCfg.Proxy.StaticManifest,
			OfflinePage:    jsonCfg.Proxy.OfflinePage,
			StaticSuffixes: jsonCfg.Proxy.StaticSuffixes,
			ImageSuffixes:  jsonCfg.Proxy.ImageSuffixes,
			APIPatterns:    jsonCfg.Proxy.APIPatterns,
			AllowedOrigins: jsonCfg.Proxy.AllowedOrigins,
		},
		Queue: Queue{
			Capacity:       jsonCfg.Queue.Capacity,
			MaxRetries:     jsonCfg.Queue.MaxRetries,
			CommitAttempts: jsonCfg.Queue.CommitAttempts,
		},
		Workers: Workers{
			SettleDelay: time.Duration(jsonCfg.Workers.SettleDelay),
		},
		Push: Push{
			EndpointBase: jsonCfg.Push.EndpointBase,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
