// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_OnlyChangedFlags(t *testing.T) {
	fs := newTestFlagSet(t, "--batch-size", "3")

	cfg, err := parseFlags(fs)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Sync.BatchSize)
	assert.Nil(t, cfg.Sync.AutoSync, "auto-sync default must not take part in the merge")
	assert.Empty(t, cfg.Storage.DB.DSN)
}

func TestParseFlags_AllFlags(t *testing.T) {
	fs := newTestFlagSet(t,
		"-c", "/tmp/cfg.json",
		"-d", "local.db",
		"-u", "http://remote",
		"--token", "t",
		"--request-timeout", "10s",
		"--probe-timeout", "2s",
		"-a", "localhost:9000",
		"--sync-interval", "1m",
		"--max-retries", "6",
		"--conflict-strategy", "merge",
		"--auto-sync=false",
		"--settings-file", "/tmp/settings.json",
		"--log-level", "warn",
		"--log-file", "/tmp/fieldsync.log",
	)

	cfg, err := parseFlags(fs)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cfg.json", cfg.ConfigFilePath)
	assert.Equal(t, "local.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "http://remote", cfg.Adapter.BaseURL)
	assert.Equal(t, "t", cfg.Adapter.Token)
	assert.Equal(t, 10*time.Second, cfg.Adapter.RequestTimeout.D())
	assert.Equal(t, 2*time.Second, cfg.Adapter.ProbeTimeout.D())
	assert.Equal(t, "localhost:9000", cfg.Server.HTTPAddress)
	assert.Equal(t, time.Minute, cfg.Workers.SyncInterval.D())
	assert.Equal(t, 6, cfg.Sync.MaxRetries)
	assert.Equal(t, "merge", cfg.Sync.ConflictStrategy)
	require.NotNil(t, cfg.Sync.AutoSync)
	assert.False(t, *cfg.Sync.AutoSync)
	assert.Equal(t, "/tmp/settings.json", cfg.Workers.SettingsFile)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/fieldsync.log", cfg.Log.File)
}

func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "ip", in: "127.0.0.1:8080", want: "127.0.0.1:8080"},
		{name: "localhost", in: "localhost:1", want: "localhost:1"},
		{name: "all interfaces", in: ":8080", want: ":8080"},
		{name: "no port", in: "127.0.0.1", wantErr: true},
		{name: "zero port", in: "127.0.0.1:0", wantErr: true},
		{name: "port too big", in: "127.0.0.1:70000", wantErr: true},
		{name: "bad host", in: "example:80", wantErr: true},
		{name: "non-numeric port", in: "localhost:http", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a NetAddress
			err := a.Set(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.String())
		})
	}
}

func TestNetAddress_EmptyString(t *testing.T) {
	var a NetAddress
	assert.Equal(t, "", a.String())
	assert.Equal(t, "host:port", a.Type())
}
