// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/models"
)

// ── fakeEngine ───────────────────────────────────────────────────────────────

type enqueueCall struct {
	itemType models.ItemType
	payload  json.RawMessage
	priority int
	opts     models.EnqueueOptions
}

type fakeEngine struct {
	mu sync.Mutex

	status   models.EngineStatus
	progress models.SyncProgress
	settings models.SyncSettings
	items    []models.SyncQueueItem
	log      []models.SyncLogEntry
	result   models.RunResult
	affected int64
	err      error

	triggered  int
	started    int
	patches    []models.SettingsPatch
	enqueued   []enqueueCall
	lastLimit  int
	subscriber service.ProgressFunc
	unsubbed   bool
}

var _ service.SyncEngine = (*fakeEngine)(nil)

func (f *fakeEngine) QueueForSync(_ context.Context, itemType models.ItemType, payload json.RawMessage, priority int, opts models.EnqueueOptions) (int64, error) {
	f.enqueued = append(f.enqueued, enqueueCall{itemType, payload, priority, opts})
	return 42, f.err
}

func (f *fakeEngine) TriggerSync(context.Context) models.RunResult {
	f.triggered++
	return f.result
}

func (f *fakeEngine) StartSync(context.Context) models.RunResult {
	f.started++
	return f.result
}

func (f *fakeEngine) PendingCount(context.Context) (int, error) { return len(f.items), f.err }
func (f *fakeEngine) Progress() models.SyncProgress              { return f.progress }

func (f *fakeEngine) SubscribeProgress(fn service.ProgressFunc) service.SubscriptionID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscriber = fn
	return 1
}

func (f *fakeEngine) UnsubscribeProgress(service.SubscriptionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubbed = true
	f.subscriber = nil
}

// publish delivers p to the subscribed hub.
func (f *fakeEngine) publish(p models.SyncProgress) {
	f.mu.Lock()
	fn := f.subscriber
	f.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

func (f *fakeEngine) Settings(context.Context) (models.SyncSettings, error) { return f.settings, f.err }

func (f *fakeEngine) UpdateSettings(_ context.Context, patch models.SettingsPatch) (models.SyncSettings, error) {
	f.patches = append(f.patches, patch)
	if f.err != nil {
		return models.SyncSettings{}, f.err
	}
	return f.settings.Apply(patch), nil
}

func (f *fakeEngine) RetryFailed(context.Context) (int64, error) { return f.affected, f.err }
func (f *fakeEngine) ClearFailed(context.Context) (int64, error) { return f.affected, f.err }

func (f *fakeEngine) RecentLog(_ context.Context, limit int) ([]models.SyncLogEntry, error) {
	f.lastLimit = limit
	return f.log, f.err
}

func (f *fakeEngine) QueueItems(_ context.Context, limit int) ([]models.SyncQueueItem, error) {
	f.lastLimit = limit
	return f.items, f.err
}

func (f *fakeEngine) Status(context.Context) (models.EngineStatus, error) { return f.status, f.err }
func (f *fakeEngine) State() models.SyncState                            { return f.progress.Status }
func (f *fakeEngine) Wait()                                               {}
func (f *fakeEngine) Close()                                              {}

// ── fakeCapture ──────────────────────────────────────────────────────────────

type fakeCapture struct {
	receipt models.CaptureReceipt
	err     error

	proofs     []models.ProofCapture
	attendance []models.AttendancePayload
	statuses   []models.StatusUpdatePayload
}

func (f *fakeCapture) CaptureProof(_ context.Context, c models.ProofCapture) (models.CaptureReceipt, error) {
	f.proofs = append(f.proofs, c)
	return f.receipt, f.err
}

func (f *fakeCapture) CaptureAttendance(_ context.Context, a models.AttendancePayload) (models.CaptureReceipt, error) {
	f.attendance = append(f.attendance, a)
	return f.receipt, f.err
}

func (f *fakeCapture) UpdateTaskStatus(_ context.Context, u models.StatusUpdatePayload) (models.CaptureReceipt, error) {
	f.statuses = append(f.statuses, u)
	return f.receipt, f.err
}

// ── fakeCache ────────────────────────────────────────────────────────────────

type fakeCache struct {
	tasks, schools       []models.CachedEntity
	refreshed            int
	tasksErr, schoolsErr error
}

func (f *fakeCache) RefreshTasks(context.Context) (int, error) {
	f.refreshed++
	return len(f.tasks), f.tasksErr
}

func (f *fakeCache) RefreshSchools(context.Context) (int, error) {
	f.refreshed++
	return len(f.schools), f.schoolsErr
}

func (f *fakeCache) Tasks(context.Context) ([]models.CachedEntity, error)   { return f.tasks, f.tasksErr }
func (f *fakeCache) Schools(context.Context) ([]models.CachedEntity, error) { return f.schools, f.schoolsErr }

func (f *fakeCache) Evict(context.Context, time.Duration) (int64, error) { return 0, nil }

// ── helpers ──────────────────────────────────────────────────────────────────

type testDeps struct {
	engine  *fakeEngine
	capture *fakeCapture
	cache   *fakeCache
}

func newTestDeps() *testDeps {
	return &testDeps{
		engine:  &fakeEngine{settings: models.DefaultSyncSettings()},
		capture: &fakeCapture{},
		cache:   &fakeCache{},
	}
}

func (d *testDeps) handler() *Handler {
	return NewHandler(&service.Services{
		Engine:  d.engine,
		Capture: d.capture,
		Cache:   d.cache,
	}, models.NewAppBuildInfo("1.4.0", "2026-10-01", "abc123"), logger.Nop())
}
