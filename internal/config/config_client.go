// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-sync/models"
	"github.com/spf13/pflag"
)

// ClientAdapter holds the resolved remote API client settings.
type ClientAdapter struct {
	BaseURL        string
	Token          string
	DeviceID       string
	HealthPath     string
	RequestTimeout time.Duration
	ProbeTimeout   time.Duration
	RetryCount     int
	RetryWait      time.Duration
	RetryMaxWait   time.Duration
}

// ClientDB contains local database connection settings.
type ClientDB struct {
	// DSN is the SQLite path or PostgreSQL URL of the local store.
	DSN string
}

// ClientStorage groups storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientServer holds the local control API settings.
type ClientServer struct {
	HTTPAddress    string
	RequestTimeout time.Duration
}

// ClientWorkers contains background worker settings.
type ClientWorkers struct {
	SyncInterval         time.Duration
	ConnectivityInterval time.Duration
	MaintenanceInterval  time.Duration
	LogRetention         time.Duration
	CacheRetention       time.Duration
	SettingsFile         string
}

// ClientLog contains logger settings.
type ClientLog struct {
	Role       string
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ClientConfig is the runtime configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	Adapter ClientAdapter
	Storage ClientStorage
	Server  ClientServer
	Workers ClientWorkers
	Log     ClientLog

	// Sync seeds the persisted sync settings when none are stored yet.
	Sync models.SyncSettings
}

// GetClientConfig builds the runtime config from all sources (see
// [GetStructuredConfig]) and validates it. fs may be nil.
func GetClientConfig(fs *pflag.FlagSet) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(fs)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := cfg.Client()
	return clientCfg, clientCfg.validate()
}

// Client maps the raw configuration tree to a [ClientConfig].
func (cfg *StructuredConfig) Client() *ClientConfig {
	autoSync := true
	if cfg.Sync.AutoSync != nil {
		autoSync = *cfg.Sync.AutoSync
	}

	return &ClientConfig{
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.BaseURL,
			Token:          cfg.Adapter.Token,
			DeviceID:       cfg.App.DeviceID,
			HealthPath:     cfg.Adapter.HealthPath,
			RequestTimeout: cfg.Adapter.RequestTimeout.D(),
			ProbeTimeout:   cfg.Adapter.ProbeTimeout.D(),
			RetryCount:     cfg.Adapter.RetryCount,
			RetryWait:      cfg.Adapter.RetryWait.D(),
			RetryMaxWait:   cfg.Adapter.RetryMaxWait.D(),
		},
		Storage: ClientStorage{DB: ClientDB{DSN: cfg.Storage.DB.DSN}},
		Server: ClientServer{
			HTTPAddress:    cfg.Server.HTTPAddress,
			RequestTimeout: cfg.Server.RequestTimeout.D(),
		},
		Workers: ClientWorkers{
			SyncInterval:         cfg.Workers.SyncInterval.D(),
			ConnectivityInterval: cfg.Workers.ConnectivityInterval.D(),
			MaintenanceInterval:  cfg.Workers.MaintenanceInterval.D(),
			LogRetention:         cfg.Workers.LogRetention.D(),
			CacheRetention:       cfg.Workers.CacheRetention.D(),
			SettingsFile:         cfg.Workers.SettingsFile,
		},
		Log: ClientLog{
			Role:       cfg.App.Name,
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		},
		Sync: models.SyncSettings{
			AutoSync:         autoSync,
			MaxRetries:       cfg.Sync.MaxRetries,
			BatchSize:        cfg.Sync.BatchSize,
			ConflictStrategy: models.ConflictStrategy(cfg.Sync.ConflictStrategy),
			BatchDelayMS:     cfg.Sync.BatchDelay.D().Milliseconds(),
		}.Normalize(),
	}
}
