// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"strings"

	"github.com/rs/zerolog"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// A zero-value config is accepted so that partially assembled configs can be
// built in isolation; the checks apply only to sections that were set.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.LogLevel != "" {
		if _, err := zerolog.ParseLevel(cfg.App.LogLevel); err != nil {
			return ErrInvalidAppConfigs
		}
	}

	if strings.Contains(cfg.Storage.DB.DSN, ":memory:") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.RequestTimeout < 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Queue.Capacity < 0 || cfg.Queue.MaxRetries < 0 || cfg.Queue.CommitAttempts < 0 {
		return ErrInvalidQueueConfigs
	}

	if cfg.Workers.SettleDelay < 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Proxy.OfflinePage != "" && !contains(cfg.Proxy.StaticManifest, cfg.Proxy.OfflinePage) && len(cfg.Proxy.StaticManifest) > 0 {
		return ErrInvalidProxyConfigs
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
