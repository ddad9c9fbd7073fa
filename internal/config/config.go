// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container for the
// offline layer. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the cache version and
	// notification defaults.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the local SQLite database that backs
	// both the response cache and the mutation queue.
	Storage Storage `envPrefix:"STORAGE_"`

	// Adapter holds the backend address and outbound request settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Proxy holds the caching proxy routes and the local gateway address.
	Proxy Proxy `envPrefix:"PROXY_"`

	// Queue holds mutation queue limits.
	Queue Queue `envPrefix:"QUEUE_"`

	// Workers holds configuration for background worker processes.
	Workers Workers `envPrefix:"WORKERS_"`

	// Push holds push subscription settings.
	Push Push `envPrefix:"PUSH_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Name is the application name, used as the default notification title.
	// Env: APP_NAME
	Name string `env:"NAME"`

	// CacheVersion is the opaque token naming the current cache version.
	// Every cache store with a different name is purged on activation.
	// Env: APP_CACHE_VERSION
	CacheVersion string `env:"CACHE_VERSION"`

	// DefaultIcon is the icon used when a push payload has none.
	// Env: APP_DEFAULT_ICON
	DefaultIcon string `env:"DEFAULT_ICON"`

	// DefaultBadge is the badge used when a push payload has none.
	// Env: APP_DEFAULT_BADGE
	DefaultBadge string `env:"DEFAULT_BADGE"`

	// HashKey is the HMAC key used for the HashSHA256 integrity header on
	// replayed writes. Empty disables the header.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// LogLevel is the minimum zerolog level written (e.g. "debug", "info").
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`
}

// Storage groups the configuration for local persistence.
type Storage struct {
	// DB holds the SQLite connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local database.
type DB struct {
	// DSN is the SQLite file path or DSN (e.g. "offline.db?_busy_timeout=5000").
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Adapter holds configuration for the backend REST surface.
type Adapter struct {
	// HTTPAddress is the backend origin (e.g. "https://api.example.com").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// APIBase is the path prefix prepended to every queued endpoint
	// (e.g. "/api").
	// Env: ADAPTER_API_BASE
	APIBase string `env:"API_BASE"`

	// RequestTimeout bounds every outbound request made by the adapter.
	// The caching proxy's network-first strategies share it.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Proxy holds routing configuration for the caching proxy and the local
// gateway that exposes it.
type Proxy struct {
	// ListenAddress is the local gateway address in "host:port" format.
	// Env: PROXY_ADDRESS
	ListenAddress string `env:"ADDRESS"`

	// StaticManifest lists asset paths cached at install time.
	// Env: PROXY_STATIC_MANIFEST (comma separated)
	StaticManifest []string `env:"STATIC_MANIFEST"`

	// OfflinePage is the manifest path served when a navigation fails with
	// no cached copy.
	// Env: PROXY_OFFLINE_PAGE
	OfflinePage string `env:"OFFLINE_PAGE"`

	// StaticSuffixes selects cache-first static assets by file suffix.
	// Env: PROXY_STATIC_SUFFIXES
	StaticSuffixes []string `env:"STATIC_SUFFIXES"`

	// ImageSuffixes is the subset of static suffixes that resolve to an
	// empty 404 response when both cache and network fail.
	// Env: PROXY_IMAGE_SUFFIXES
	ImageSuffixes []string `env:"IMAGE_SUFFIXES"`

	// APIPatterns are doublestar globs matched against the request path to
	// select network-first-with-cache-fallback API reads.
	// Env: PROXY_API_PATTERNS
	APIPatterns []string `env:"API_PATTERNS"`

	// AllowedOrigins lists page origins the gateway accepts cross-origin
	// requests and websocket connections from. Supports one "*" wildcard
	// per entry (e.g. "http://localhost:*").
	// Env: PROXY_ALLOWED_ORIGINS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`
}

// Queue holds mutation queue limits.
type Queue struct {
	// Capacity is the hard cap on queued entries. Overflow drops the oldest.
	// Env: QUEUE_CAPACITY
	Capacity int `env:"CAPACITY"`

	// MaxRetries is the retry ceiling after which an entry is dropped.
	// Env: QUEUE_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// CommitAttempts bounds the optimistic read-modify-write loop.
	// Env: QUEUE_COMMIT_ATTEMPTS
	CommitAttempts int `env:"COMMIT_ATTEMPTS"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// SettleDelay is waited after an offline→online transition before the
	// queue is drained.
	// Env: WORKERS_SETTLE_DELAY
	SettleDelay time.Duration `env:"SETTLE_DELAY"`
}

// Push holds push subscription settings.
type Push struct {
	// EndpointBase is the push relay origin used to build subscription
	// endpoints. Empty disables push support.
	// Env: PUSH_ENDPOINT_BASE
	EndpointBase string `env:"ENDPOINT_BASE"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults for anything still unset
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		withDefaults().
		build()
}
