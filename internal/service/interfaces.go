// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service implements the offline sync engine: the durable queue
// manager, the conflict resolver, the progress notifier, the per-type
// upload handlers, the run orchestrator and the [SyncEngine] facade the
// rest of the application talks to. It also holds the capture and
// reference-cache services that feed the queue and the local store.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-field-sync/models"
)

// SyncQueue is the queue manager. It owns every mutation of queued items.
type SyncQueue interface {
	// Enqueue stores a pending item with retry count zero. priority <= 0
	// selects [models.PriorityDefault].
	Enqueue(ctx context.Context, itemType models.ItemType, payload json.RawMessage, priority int, opts models.EnqueueOptions) (int64, error)

	// NextBatch returns the eligible items in upload order split into
	// groups of at most batchSize.
	NextBatch(ctx context.Context, maxRetries, batchSize int) ([][]models.SyncQueueItem, error)

	Get(ctx context.Context, id int64) (models.SyncQueueItem, error)

	// RecordSuccess removes the item.
	RecordSuccess(ctx context.Context, item models.SyncQueueItem) error

	// RecordFailure consumes one retry and moves the item to failed once
	// the budget is exhausted.
	RecordFailure(ctx context.Context, item models.SyncQueueItem, cause error, maxRetries int) error

	// RecordDeferred notes an attempt that could not start yet without
	// consuming retry budget.
	RecordDeferred(ctx context.Context, item models.SyncQueueItem, reason string) error

	// DeadLetter moves the item to failed immediately.
	DeadLetter(ctx context.Context, item models.SyncQueueItem, cause error, maxRetries int) error

	// Annotate only replaces the error message of the item.
	Annotate(ctx context.Context, item models.SyncQueueItem, message string) error

	// ResolvePrerequisite hands serverID to the photo and signature items
	// correlated with correlationID.
	ResolvePrerequisite(ctx context.Context, correlationID, serverID string) (int64, error)

	// FailExhausted moves pending items at or above maxRetries attempts to
	// failed so that RetryFailed can reach them.
	FailExhausted(ctx context.Context, maxRetries int) (int64, error)

	ResetFailed(ctx context.Context) (int64, error)
	ClearFailed(ctx context.Context) (int64, error)

	// PendingCount counts every queued item, failed ones included.
	PendingCount(ctx context.Context) (int, error)
	Stats(ctx context.Context) (models.QueueStats, error)
	List(ctx context.Context, limit int) ([]models.SyncQueueItem, error)
}

// SettingsStore persists sync settings and the last sync time in the
// metadata table.
type SettingsStore interface {
	// Settings returns the stored settings or the defaults when unset.
	Settings(ctx context.Context) (models.SyncSettings, error)

	// UpdateSettings applies patch to the stored settings and returns the
	// result. Invalid values are rejected with ErrInvalidSettings.
	UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.SyncSettings, error)

	// EnsureDefaults stores defaults unless settings already exist.
	EnsureDefaults(ctx context.Context) error

	LastSyncTime(ctx context.Context) (*time.Time, error)
	SetLastSyncTime(ctx context.Context, t time.Time) error
}

// UploadHandler replays one kind of queued item against the remote API.
type UploadHandler interface {
	Type() models.ItemType

	// Handle uploads the item and writes the outcome back to the local
	// store. A 409 answer is resolved with strategy and reported as
	// success.
	Handle(ctx context.Context, item models.SyncQueueItem, strategy models.ConflictStrategy) (HandlerResult, error)
}

// HandlerResult describes a successful upload.
type HandlerResult struct {
	ServerID string
	Action   models.SyncAction
	Message  string
}

// Connectivity is the view of the connectivity monitor the orchestrator
// and the engine need.
type Connectivity interface {
	IsOnline() bool
	VerifyOnline(ctx context.Context, timeout time.Duration) bool
	OnChange(fn func(online bool)) (unsubscribe func())
}

// SyncEngine is the facade exposed to the host application.
type SyncEngine interface {
	// QueueForSync enqueues an item and, when the device is online, idle
	// and auto sync is enabled, starts a run in the background.
	QueueForSync(ctx context.Context, itemType models.ItemType, payload json.RawMessage, priority int, opts models.EnqueueOptions) (int64, error)

	// TriggerSync runs a sync pass and returns once it has finished. The
	// run is detached from ctx cancellation.
	TriggerSync(ctx context.Context) models.RunResult

	// StartSync starts a sync pass in the background.
	StartSync(ctx context.Context) models.RunResult

	PendingCount(ctx context.Context) (int, error)
	Progress() models.SyncProgress
	SubscribeProgress(fn ProgressFunc) SubscriptionID
	UnsubscribeProgress(id SubscriptionID)

	Settings(ctx context.Context) (models.SyncSettings, error)
	UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.SyncSettings, error)

	// RetryFailed resets failed items and starts a run when online.
	RetryFailed(ctx context.Context) (int64, error)
	ClearFailed(ctx context.Context) (int64, error)

	RecentLog(ctx context.Context, limit int) ([]models.SyncLogEntry, error)
	QueueItems(ctx context.Context, limit int) ([]models.SyncQueueItem, error)
	Status(ctx context.Context) (models.EngineStatus, error)
	State() models.SyncState

	// Wait blocks until background runs started by the engine are done.
	Wait()

	// Close stops reacting to connectivity changes and waits for
	// background runs.
	Close()
}

// CaptureService records user actions locally and queues them for upload.
type CaptureService interface {
	CaptureProof(ctx context.Context, capture models.ProofCapture) (models.CaptureReceipt, error)
	CaptureAttendance(ctx context.Context, attendance models.AttendancePayload) (models.CaptureReceipt, error)
	UpdateTaskStatus(ctx context.Context, update models.StatusUpdatePayload) (models.CaptureReceipt, error)
}

// CacheService keeps the reference data used offline.
type CacheService interface {
	RefreshTasks(ctx context.Context) (int, error)
	RefreshSchools(ctx context.Context) (int, error)
	Tasks(ctx context.Context) ([]models.CachedEntity, error)
	Schools(ctx context.Context) ([]models.CachedEntity, error)

	// Evict removes cached rows older than maxAge.
	Evict(ctx context.Context, maxAge time.Duration) (int64, error)
}
