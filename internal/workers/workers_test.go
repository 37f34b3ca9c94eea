// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

// ── fakes ───────────────────────────────────────────────────────────────────

type funcWorker struct {
	name string
	run  func(ctx context.Context) error
}

func (w funcWorker) Name() string                  { return w.name }
func (w funcWorker) Run(ctx context.Context) error { return w.run(ctx) }

type fakeEngine struct {
	autoSync  atomic.Bool
	triggered atomic.Int32
}

func (e *fakeEngine) Settings(context.Context) (models.SyncSettings, error) {
	s := models.DefaultSyncSettings()
	s.AutoSync = e.autoSync.Load()
	return s, nil
}

func (e *fakeEngine) TriggerSync(context.Context) models.RunResult {
	e.triggered.Add(1)
	return models.RunResult{Started: true, Progress: models.SyncProgress{Status: models.SyncStateCompleted}}
}

type fakeProber struct {
	calls   atomic.Int32
	timeout atomic.Int64
}

func (p *fakeProber) VerifyOnline(_ context.Context, timeout time.Duration) bool {
	p.calls.Add(1)
	p.timeout.Store(int64(timeout))
	return true
}

type fakeMaintenance struct {
	mu     sync.Mutex
	cutoff time.Time
	maxAge time.Duration
	pruned int
	evicts int
}

func (f *fakeMaintenance) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruned++
	f.cutoff = cutoff
	return 3, nil
}

func (f *fakeMaintenance) Evict(_ context.Context, maxAge time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evicts++
	f.maxAge = maxAge
	return 0, errors.New("database is locked")
}

type fakeUpdater struct {
	mu      sync.Mutex
	patches []models.SettingsPatch
}

func (f *fakeUpdater) UpdateSettings(_ context.Context, p models.SettingsPatch) (models.SyncSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, p)
	return models.DefaultSyncSettings().Apply(p), nil
}

func (f *fakeUpdater) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

func (f *fakeUpdater) last() models.SettingsPatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.patches[len(f.patches)-1]
}

// ── Workers ─────────────────────────────────────────────────────────────────

func TestWorkers_RunStopsOnCancel(t *testing.T) {
	var stopped atomic.Int32
	block := func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Add(1)
		return ctx.Err()
	}

	ws := NewWorkers(logger.Nop(),
		funcWorker{name: "a", run: block},
		funcWorker{name: "b", run: block},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
	assert.Equal(t, int32(2), stopped.Load())
}

func TestWorkers_FirstFailureCancelsOthers(t *testing.T) {
	boom := errors.New("listen tcp: address in use")

	ws := NewWorkers(logger.Nop(),
		funcWorker{name: "server", run: func(context.Context) error { return boom }},
		funcWorker{name: "sync", run: func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}},
	)

	err := ws.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "worker server")
}

func TestWorkers_Empty(t *testing.T) {
	assert.NoError(t, NewWorkers(logger.Nop()).Run(context.Background()))
}

// ── SyncJob ─────────────────────────────────────────────────────────────────

func TestSyncJob_TriggersOnlyWithAutoSync(t *testing.T) {
	engine := &fakeEngine{}
	job := NewSyncJob(engine, 5*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, engine.triggered.Load())

	engine.autoSync.Store(true)
	require.Eventually(t, func() bool { return engine.triggered.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestNewSyncJob_DefaultInterval(t *testing.T) {
	job := NewSyncJob(&fakeEngine{}, 0, logger.Nop())
	assert.Equal(t, 5*time.Minute, job.interval)
	assert.Equal(t, "periodic-sync", job.Name())
}

// ── ConnectivityJob ─────────────────────────────────────────────────────────

func TestConnectivityJob_ProbesImmediatelyAndPeriodically(t *testing.T) {
	prober := &fakeProber{}
	job := NewConnectivityJob(prober, time.Hour, 3*time.Second, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()

	require.Eventually(t, func() bool { return prober.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(3*time.Second), prober.timeout.Load())

	cancel()
	assert.NoError(t, <-done)

	prober = &fakeProber{}
	job = NewConnectivityJob(prober, 5*time.Millisecond, time.Second, logger.Nop())
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = job.Run(ctx) }()
	require.Eventually(t, func() bool { return prober.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

// ── MaintenanceJob ──────────────────────────────────────────────────────────

func TestMaintenanceJob_RunOnce(t *testing.T) {
	f := &fakeMaintenance{}
	job := NewMaintenanceJob(f, f, MaintenanceConfig{
		LogRetention:   24 * time.Hour,
		CacheRetention: 7 * 24 * time.Hour,
	}, logger.Nop())
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	job.runOnce(context.Background())

	assert.Equal(t, 1, f.pruned)
	assert.Equal(t, now.Add(-24*time.Hour), f.cutoff)
	assert.Equal(t, 1, f.evicts, "a failing step does not stop the others")
	assert.Equal(t, 7*24*time.Hour, f.maxAge)
	assert.Equal(t, time.Hour, job.interval)
}

func TestMaintenanceJob_ZeroRetentionSkipsStep(t *testing.T) {
	f := &fakeMaintenance{}
	job := NewMaintenanceJob(f, f, MaintenanceConfig{CacheRetention: time.Hour}, logger.Nop())

	job.runOnce(context.Background())

	assert.Zero(t, f.pruned)
	assert.Equal(t, 1, f.evicts)
}

// ── SettingsWatcher ─────────────────────────────────────────────────────────

func TestLoadSettingsPatch(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "sync.yaml", "auto_sync: false\nbatch_size: 25\nconflict_strategy: merge\nbatch_delay: 2s\n"},
		{"json", "sync.json", `{"auto_sync":false,"batch_size":25,"conflict_strategy":"merge","batch_delay":"2s"}`},
		{"toml", "sync.toml", "auto_sync = false\nbatch_size = 25\nconflict_strategy = \"merge\"\nbatch_delay = \"2s\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			p, err := loadSettingsPatch(path)
			require.NoError(t, err)
			require.NotNil(t, p.AutoSync)
			assert.False(t, *p.AutoSync)
			require.NotNil(t, p.BatchSize)
			assert.Equal(t, 25, *p.BatchSize)
			require.NotNil(t, p.ConflictStrategy)
			assert.Equal(t, models.StrategyMerge, *p.ConflictStrategy)
			require.NotNil(t, p.BatchDelayMS)
			assert.Equal(t, int64(2000), *p.BatchDelayMS)
			assert.Nil(t, p.MaxRetries)
		})
	}

	_, err := loadSettingsPatch(filepath.Join(dir, "sync.ini"))
	assert.Error(t, err)
}

func TestSettingsWatcher_AppliesOnStartAndChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: 5\n"), 0o600))

	updater := &fakeUpdater{}
	w := NewSettingsWatcher(path, updater, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return updater.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NotNil(t, updater.last().MaxRetries)
	assert.Equal(t, 5, *updater.last().MaxRetries)

	require.NoError(t, os.WriteFile(path, []byte("max_retries: 7\n"), 0o600))
	require.Eventually(t, func() bool {
		return updater.count() >= 2 && *updater.last().MaxRetries == 7
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestSettingsWatcher_MissingDirectory(t *testing.T) {
	w := NewSettingsWatcher(filepath.Join(t.TempDir(), "nope", "sync.yaml"), &fakeUpdater{}, logger.Nop())
	assert.Error(t, w.Run(context.Background()))
}
