package config

import "time"

// Defaults returns the built-in configuration used for every field that no
// environment variable, flag, or JSON file sets.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			Name:         "FitTrack",
			CacheVersion: "fittrack-v1",
			DefaultIcon:  "/icons/icon-192.png",
			DefaultBadge: "/icons/badge-72.png",
			LogLevel:     "debug",
		},
		Storage: Storage{
			DB: DB{DSN: "offline.db?_busy_timeout=5000&_journal_mode=WAL"},
		},
		Adapter: Adapter{
			APIBase:        "/api",
			RequestTimeout: 15 * time.Second,
		},
		Proxy: Proxy{
			ListenAddress: "localhost:8081",
			StaticManifest: []string{
				"/",
				"/index.html",
				"/offline.html",
				"/manifest.webmanifest",
				"/icons/icon-192.png",
				"/icons/icon-512.png",
				"/icons/badge-72.png",
			},
			OfflinePage: "/offline.html",
			StaticSuffixes: []string{
				".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".svg",
				".ico", ".webp", ".woff", ".woff2", ".ttf", ".webmanifest",
			},
			ImageSuffixes: []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp"},
			APIPatterns: []string{
				"/api/workouts/**",
				"/api/scoreboard/**",
				"/api/friends/**",
				"/api/users/me",
				"/api/dashboard/**",
			},
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Queue: Queue{
			Capacity:       100,
			MaxRetries:     3,
			CommitAttempts: 5,
		},
		Workers: Workers{
			SettleDelay: time.Second,
		},
	}
}
