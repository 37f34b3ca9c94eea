// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"

	"github.com/spf13/pflag"
)

// StructuredConfig is the raw configuration tree populated from a config
// file, environment variables and command-line flags.
//
// Struct tags:
//   - envPrefix / env: caarlos0/env lookups;
//   - json / yaml / toml: config file keys.
type StructuredConfig struct {
	// App holds device-level identification.
	App App `envPrefix:"APP_" json:"app" yaml:"app" toml:"app"`

	// Adapter holds settings of the remote API client.
	Adapter Adapter `envPrefix:"ADAPTER_" json:"adapter" yaml:"adapter" toml:"adapter"`

	// Storage holds the local database settings.
	Storage Storage `envPrefix:"STORAGE_" json:"storage" yaml:"storage" toml:"storage"`

	// Server holds the local control API listener settings.
	Server Server `envPrefix:"SERVER_" json:"server" yaml:"server" toml:"server"`

	// Workers holds intervals of the background jobs.
	Workers Workers `envPrefix:"WORKERS_" json:"workers" yaml:"workers" toml:"workers"`

	// Sync seeds the persisted sync settings on first start.
	Sync Sync `envPrefix:"SYNC_" json:"sync" yaml:"sync" toml:"sync"`

	// Log holds log level and rotation settings.
	Log Log `envPrefix:"LOG_" json:"log" yaml:"log" toml:"log"`

	// ConfigFilePath is the optional path to a JSON, YAML or TOML file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	ConfigFilePath string `env:"CONFIG" json:"-" yaml:"-" toml:"-"`
}

// App identifies the device running the engine.
type App struct {
	// Name is reported in logs as the "role" field.
	// Env: APP_NAME
	Name string `env:"NAME" json:"name" yaml:"name" toml:"name"`

	// DeviceID is sent with every upload in the X-Device-ID header.
	// Env: APP_DEVICE_ID
	DeviceID string `env:"DEVICE_ID" json:"device_id" yaml:"device_id" toml:"device_id"`
}

// Adapter configures the remote API client.
type Adapter struct {
	// BaseURL is the root of the remote API (e.g. "https://api.example.org/v1").
	// Env: ADAPTER_BASE_URL
	BaseURL string `env:"BASE_URL" json:"base_url" yaml:"base_url" toml:"base_url"`

	// Token is the bearer token supplied by the host session.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN" json:"token" yaml:"token" toml:"token"`

	// HealthPath is the path probed by the connectivity monitor.
	// Env: ADAPTER_HEALTH_PATH
	HealthPath string `env:"HEALTH_PATH" json:"health_path" yaml:"health_path" toml:"health_path"`

	// RequestTimeout bounds a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout Duration `env:"REQUEST_TIMEOUT" json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`

	// ProbeTimeout bounds one connectivity probe.
	// Env: ADAPTER_PROBE_TIMEOUT
	ProbeTimeout Duration `env:"PROBE_TIMEOUT" json:"probe_timeout" yaml:"probe_timeout" toml:"probe_timeout"`

	// RetryCount is the number of transport-level retries resty performs on
	// network errors and 5xx responses.
	// Env: ADAPTER_RETRY_COUNT
	RetryCount int `env:"RETRY_COUNT" json:"retry_count" yaml:"retry_count" toml:"retry_count"`

	// RetryWait and RetryMaxWait bound the exponential backoff between
	// transport-level retries.
	// Env: ADAPTER_RETRY_WAIT, ADAPTER_RETRY_MAX_WAIT
	RetryWait    Duration `env:"RETRY_WAIT" json:"retry_wait" yaml:"retry_wait" toml:"retry_wait"`
	RetryMaxWait Duration `env:"RETRY_MAX_WAIT" json:"retry_max_wait" yaml:"retry_max_wait" toml:"retry_max_wait"`
}

// Storage groups the configuration of the local store.
type Storage struct {
	DB DB `envPrefix:"DB_" json:"db" yaml:"db" toml:"db"`
}

// DB holds connection settings of the local database. A DSN with the
// postgres:// or postgresql:// scheme selects PostgreSQL, anything else is
// treated as a SQLite file path.
type DB struct {
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN" json:"dsn" yaml:"dsn" toml:"dsn"`
}

// Server configures the local control API.
type Server struct {
	// HTTPAddress is the listen address in host:port form. Empty disables
	// the control API.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS" json:"http_address" yaml:"http_address" toml:"http_address"`

	// RequestTimeout bounds a single control API request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout Duration `env:"REQUEST_TIMEOUT" json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
}

// Workers holds intervals of the background jobs.
type Workers struct {
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval Duration `env:"SYNC_INTERVAL" json:"sync_interval" yaml:"sync_interval" toml:"sync_interval"`
	// Env: WORKERS_CONNECTIVITY_INTERVAL
	ConnectivityInterval Duration `env:"CONNECTIVITY_INTERVAL" json:"connectivity_interval" yaml:"connectivity_interval" toml:"connectivity_interval"`
	// Env: WORKERS_MAINTENANCE_INTERVAL
	MaintenanceInterval Duration `env:"MAINTENANCE_INTERVAL" json:"maintenance_interval" yaml:"maintenance_interval" toml:"maintenance_interval"`
	// LogRetention is the age after which sync log entries are pruned.
	// Env: WORKERS_LOG_RETENTION
	LogRetention Duration `env:"LOG_RETENTION" json:"log_retention" yaml:"log_retention" toml:"log_retention"`
	// CacheRetention is the age after which cached reference data is evicted.
	// Env: WORKERS_CACHE_RETENTION
	CacheRetention Duration `env:"CACHE_RETENTION" json:"cache_retention" yaml:"cache_retention" toml:"cache_retention"`
	// SettingsFile is watched for sync settings changes. Empty disables the watcher.
	// Env: WORKERS_SETTINGS_FILE
	SettingsFile string `env:"SETTINGS_FILE" json:"settings_file" yaml:"settings_file" toml:"settings_file"`
}

// Sync seeds the persisted sync settings. Values stored in the database win
// over these once settings were saved.
type Sync struct {
	// Env: SYNC_AUTO_SYNC
	AutoSync *bool `env:"AUTO_SYNC" json:"auto_sync" yaml:"auto_sync" toml:"auto_sync"`
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES" json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	// Env: SYNC_BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE" json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	// Env: SYNC_CONFLICT_STRATEGY
	ConflictStrategy string `env:"CONFLICT_STRATEGY" json:"conflict_strategy" yaml:"conflict_strategy" toml:"conflict_strategy"`
	// Env: SYNC_BATCH_DELAY
	BatchDelay Duration `env:"BATCH_DELAY" json:"batch_delay" yaml:"batch_delay" toml:"batch_delay"`
}

// Log configures the logger.
type Log struct {
	// Level is a zerolog level name (debug, info, warn, error).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL" json:"level" yaml:"level" toml:"level"`
	// File is the rotating log file path. Empty logs to stdout.
	// Env: LOG_FILE
	File string `env:"FILE" json:"file" yaml:"file" toml:"file"`
	// Env: LOG_MAX_SIZE_MB
	MaxSizeMB int `env:"MAX_SIZE_MB" json:"max_size_mb" yaml:"max_size_mb" toml:"max_size_mb"`
	// Env: LOG_MAX_BACKUPS
	MaxBackups int `env:"MAX_BACKUPS" json:"max_backups" yaml:"max_backups" toml:"max_backups"`
	// Env: LOG_MAX_AGE_DAYS
	MaxAgeDays int `env:"MAX_AGE_DAYS" json:"max_age_days" yaml:"max_age_days" toml:"max_age_days"`
}

// defaultConfig returns the values used when no source sets a field.
func defaultConfig() *StructuredConfig {
	autoSync := true
	return &StructuredConfig{
		App: App{Name: "fieldsync"},
		Adapter: Adapter{
			HealthPath:     "/health",
			RequestTimeout: Duration(30 * time.Second),
			ProbeTimeout:   Duration(5 * time.Second),
			RetryCount:     2,
			RetryWait:      Duration(500 * time.Millisecond),
			RetryMaxWait:   Duration(5 * time.Second),
		},
		Storage: Storage{DB: DB{DSN: "fieldsync.db"}},
		Server:  Server{RequestTimeout: Duration(30 * time.Second)},
		Workers: Workers{
			SyncInterval:         Duration(5 * time.Minute),
			ConnectivityInterval: Duration(15 * time.Second),
			MaintenanceInterval:  Duration(time.Hour),
			LogRetention:         Duration(30 * 24 * time.Hour),
			CacheRetention:       Duration(7 * 24 * time.Hour),
		},
		Sync: Sync{
			AutoSync:         &autoSync,
			MaxRetries:       3,
			BatchSize:        10,
			ConflictStrategy: "server_wins",
			BatchDelay:       Duration(500 * time.Millisecond),
		},
		Log: Log{Level: "info", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 28},
	}
}

// GetStructuredConfig loads and merges the configuration from all sources.
// Priority, lowest to highest:
//  1. built-in defaults
//  2. config file (path resolved from sources 3 and 4)
//  3. environment variables
//  4. command-line flags set on fs
//
// fs may be nil, in which case flags are skipped.
func GetStructuredConfig(fs *pflag.FlagSet) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(fs).
		withFile().
		build()
}
