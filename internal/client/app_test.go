// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

// fakeRemote answers the health probe and task status updates.
type fakeRemote struct {
	statusUpdates atomic.Int32
}

func (f *fakeRemote) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PUT /tasks/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		f.statusUpdates.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"` + r.PathValue("id") + `","status":"completed"}}`))
	})
	return mux
}

func testConfig(t *testing.T, baseURL string) *config.ClientConfig {
	t.Helper()
	return &config.ClientConfig{
		Adapter: config.ClientAdapter{
			BaseURL:        baseURL,
			HealthPath:     "/health",
			RequestTimeout: 2 * time.Second,
			ProbeTimeout:   time.Second,
		},
		Storage: config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "app.db")}},
		Workers: config.ClientWorkers{
			SyncInterval:         time.Hour,
			ConnectivityInterval: time.Hour,
			MaintenanceInterval:  time.Hour,
		},
		Sync: models.DefaultSyncSettings(),
	}
}

func newTestApp(t *testing.T, cfg *config.ClientConfig) *App {
	t.Helper()
	app, err := NewApp(context.Background(), cfg, models.NewAppBuildInfo("test", "", ""), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// ── NewApp ───────────────────────────────────────────────────────────────────

func TestNewApp_StartsOfflineWithDefaults(t *testing.T) {
	app := newTestApp(t, testConfig(t, "http://127.0.0.1:1"))
	ctx := context.Background()

	assert.False(t, app.Monitor().IsOnline())

	settings, err := app.Services().Engine.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSyncSettings(), settings)
}

func TestNewApp_InvalidBaseURL(t *testing.T) {
	_, err := NewApp(context.Background(), testConfig(t, "://"), models.AppBuildInfo{}, logger.Nop())
	require.Error(t, err)
}

// ── SyncNow ──────────────────────────────────────────────────────────────────

func TestApp_SyncNowUploadsQueuedItems(t *testing.T) {
	remote := &fakeRemote{}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	app := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	_, err := app.Services().Capture.UpdateTaskStatus(ctx, models.StatusUpdatePayload{TaskID: "T-1", Status: "completed"})
	require.NoError(t, err)

	pending, err := app.Services().Engine.PendingCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, pending, "nothing is uploaded while offline")

	result, err := app.SyncNow(ctx)
	require.NoError(t, err)
	assert.True(t, result.Started)
	assert.Equal(t, models.SyncStateCompleted, result.Progress.Status)
	assert.Equal(t, int32(1), remote.statusUpdates.Load())

	pending, err = app.Services().Engine.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	entries, err := app.Services().Engine.RecentLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.SyncActionSuccess, entries[0].Action)
}

func TestApp_SyncNowOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	app := newTestApp(t, testConfig(t, url))

	result, err := app.SyncNow(context.Background())
	require.ErrorIs(t, err, ErrOffline)
	assert.False(t, result.Started)
	assert.Equal(t, models.ReasonOffline, result.Reason)
}

// ── Workers / Run ────────────────────────────────────────────────────────────

func TestApp_Workers(t *testing.T) {
	tests := []struct {
		name   string
		tweak  func(cfg *config.ClientConfig)
		expect []string
	}{
		{
			name:   "core workers",
			tweak:  func(*config.ClientConfig) {},
			expect: []string{"connectivity", "periodic-sync", "maintenance"},
		},
		{
			name: "watcher and control api",
			tweak: func(cfg *config.ClientConfig) {
				cfg.Workers.SettingsFile = filepath.Join(t.TempDir(), "sync.yaml")
				cfg.Server.HTTPAddress = "127.0.0.1:0"
			},
			expect: []string{"connectivity", "periodic-sync", "maintenance", "settings-watcher", "control-api"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, "http://127.0.0.1:1")
			tt.tweak(cfg)

			group, err := newTestApp(t, cfg).Workers()
			require.NoError(t, err)
			assert.Equal(t, tt.expect, group.Names())
		})
	}
}

func TestApp_RunGoesOnlineAndStops(t *testing.T) {
	remote := &fakeRemote{}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	app := newTestApp(t, testConfig(t, srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, app.Monitor().IsOnline, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}
