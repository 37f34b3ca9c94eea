// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Flag names registered by [RegisterFlags].
const (
	flagConfig           = "config"
	flagDSN              = "dsn"
	flagBaseURL          = "base-url"
	flagToken            = "token"
	flagRequestTimeout   = "request-timeout"
	flagProbeTimeout     = "probe-timeout"
	flagAddress          = "address"
	flagSyncInterval     = "sync-interval"
	flagBatchSize        = "batch-size"
	flagMaxRetries       = "max-retries"
	flagConflictStrategy = "conflict-strategy"
	flagAutoSync         = "auto-sync"
	flagSettingsFile     = "settings-file"
	flagLogLevel         = "log-level"
	flagLogFile          = "log-file"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// RegisterFlags defines all configuration flags on fs. It is meant to be
// called on the persistent flag set of the root command.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(flagConfig, "c", "", "JSON, YAML or TOML config file path")
	fs.StringP(flagDSN, "d", "", "Local database DSN (SQLite path or postgres:// URL)")
	fs.StringP(flagBaseURL, "u", "", "Remote API base URL")
	fs.String(flagToken, "", "Bearer token for the remote API")
	fs.Duration(flagRequestTimeout, 0, "Remote request timeout (e.g. 30s)")
	fs.Duration(flagProbeTimeout, 0, "Connectivity probe timeout (e.g. 5s)")
	fs.VarP(&NetAddress{}, flagAddress, "a", "Control API address host:port")
	fs.Duration(flagSyncInterval, 0, "Periodic sync interval (e.g. 5m)")
	fs.Int(flagBatchSize, 0, "Items per sync batch")
	fs.Int(flagMaxRetries, 0, "Retry ceiling per queue item")
	fs.String(flagConflictStrategy, "", "Conflict strategy: server_wins, client_wins or merge")
	fs.Bool(flagAutoSync, true, "Start a sync run automatically when items are queued")
	fs.String(flagSettingsFile, "", "Sync settings file to watch for changes")
	fs.String(flagLogLevel, "", "Log level (debug, info, warn, error)")
	fs.String(flagLogFile, "", "Rotating log file path")
}

// parseFlags builds a [StructuredConfig] from the flags explicitly set on
// fs. Flags left at their defaults do not take part in the merge.
func parseFlags(fs *pflag.FlagSet) (*StructuredConfig, error) {
	cfg := &StructuredConfig{}
	var errs []error

	str := func(name string, dst *string) {
		if !fs.Changed(name) {
			return
		}
		v, err := fs.GetString(name)
		errs = append(errs, err)
		*dst = v
	}
	dur := func(name string, dst *Duration) {
		if !fs.Changed(name) {
			return
		}
		v, err := fs.GetDuration(name)
		errs = append(errs, err)
		*dst = Duration(v)
	}
	integer := func(name string, dst *int) {
		if !fs.Changed(name) {
			return
		}
		v, err := fs.GetInt(name)
		errs = append(errs, err)
		*dst = v
	}

	str(flagConfig, &cfg.ConfigFilePath)
	str(flagDSN, &cfg.Storage.DB.DSN)
	str(flagBaseURL, &cfg.Adapter.BaseURL)
	str(flagToken, &cfg.Adapter.Token)
	dur(flagRequestTimeout, &cfg.Adapter.RequestTimeout)
	dur(flagProbeTimeout, &cfg.Adapter.ProbeTimeout)
	dur(flagSyncInterval, &cfg.Workers.SyncInterval)
	integer(flagBatchSize, &cfg.Sync.BatchSize)
	integer(flagMaxRetries, &cfg.Sync.MaxRetries)
	str(flagConflictStrategy, &cfg.Sync.ConflictStrategy)
	str(flagSettingsFile, &cfg.Workers.SettingsFile)
	str(flagLogLevel, &cfg.Log.Level)
	str(flagLogFile, &cfg.Log.File)

	if fs.Changed(flagAddress) {
		if f := fs.Lookup(flagAddress); f != nil {
			cfg.Server.HTTPAddress = f.Value.String()
		}
	}
	if fs.Changed(flagAutoSync) {
		v, err := fs.GetBool(flagAutoSync)
		errs = append(errs, err)
		cfg.Sync.AutoSync = &v
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("error reading flags: %w", err)
	}
	return cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is
// "localhost" or empty, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	host, portStr, err := net.SplitHostPort(strings.TrimSpace(s))
	if err != nil {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}
