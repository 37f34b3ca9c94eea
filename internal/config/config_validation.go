// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// validate checks that the merged [StructuredConfig] can be used at startup.
func (cfg *StructuredConfig) validate() error {
	if strings.TrimSpace(cfg.Storage.DB.DSN) == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.BaseURL != "" {
		u, err := url.Parse(cfg.Adapter.BaseURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%w: base url %q", ErrInvalidAdapterConfigs, cfg.Adapter.BaseURL)
		}
	}
	if cfg.Adapter.RequestTimeout <= 0 || cfg.Adapter.ProbeTimeout <= 0 || cfg.Adapter.RetryCount < 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.ConnectivityInterval <= 0 || cfg.Workers.MaintenanceInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	switch cfg.Sync.ConflictStrategy {
	case "server_wins", "client_wins", "merge":
	default:
		return fmt.Errorf("%w: conflict strategy %q", ErrInvalidSyncConfigs, cfg.Sync.ConflictStrategy)
	}
	if cfg.Sync.MaxRetries < 0 || cfg.Sync.BatchSize < 0 || cfg.Sync.BatchDelay < 0 {
		return ErrInvalidSyncConfigs
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLogConfigs, err)
	}

	return nil
}

// validate checks the settings that only matter when the engine talks to
// the remote API.
func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.BaseURL == "" {
		return fmt.Errorf("%w: base url is required", ErrInvalidAdapterConfigs)
	}
	return nil
}
