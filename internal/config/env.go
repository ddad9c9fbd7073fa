// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the env and envPrefix tags of [StructuredConfig].
//
// List variables are comma separated. Entries are trimmed and empty entries
// dropped, so "/, /offline.html," yields ["/", "/offline.html"].
func parseEnv(cfg *StructuredConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	for _, list := range []*[]string{
		&cfg.Proxy.StaticManifest,
		&cfg.Proxy.StaticSuffixes,
		&cfg.Proxy.ImageSuffixes,
		&cfg.Proxy.APIPatterns,
		&cfg.Proxy.AllowedOrigins,
	} {
		*list = cleanList(*list)
	}

	return nil
}

func cleanList(list []string) []string {
	if list == nil {
		return nil
	}

	out := list[:0]
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
