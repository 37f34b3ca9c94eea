// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store is the local persistent store of the sync engine. It offers
// a generic record API over the captured and cached tables and typed
// repositories for the sync queue, the sync log, sync metadata and media.
// SQLite and PostgreSQL are supported; every failure is reported as a
// [StorageError].
package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Tables managed by the generic record API.
const (
	TableCachedTasks        = "cached_tasks"
	TableCachedSchools      = "cached_schools"
	TableCapturedProofs     = "captured_proofs"
	TableCapturedAttendance = "captured_attendance"
)

// Tables is the generic record contract. Each call is atomic. Predicates
// are squirrel expressions such as sq.Eq{"sync_status": "pending"}.
type Tables interface {
	// UpsertByRemoteID inserts record or updates the row that already holds
	// remoteID. At most one row per remote id exists afterwards.
	UpsertByRemoteID(ctx context.Context, table, remoteID string, record models.Record) (int64, error)

	// Query returns the rows matching pred (all rows when pred is nil) in
	// the given order ("column" or "column ASC|DESC").
	Query(ctx context.Context, table string, pred sq.Sqlizer, orderBy ...string) ([]models.Record, error)

	// Get returns the row with the local id. ErrNotFound when absent.
	Get(ctx context.Context, table string, localID int64) (models.Record, error)

	// Append inserts record and returns its local id.
	Append(ctx context.Context, table string, record models.Record) (int64, error)

	// UpdateFields applies partial to the row. ErrNotFound when absent.
	UpdateFields(ctx context.Context, table string, localID int64, partial models.Record) error

	// DeleteWhere removes the rows matching pred and returns their count.
	DeleteWhere(ctx context.Context, table string, pred sq.Sqlizer) (int64, error)
}

// SyncQueueRepository persists [models.SyncQueueItem] values.
type SyncQueueRepository interface {
	Insert(ctx context.Context, item models.SyncQueueItem) (int64, error)
	Get(ctx context.Context, id int64) (models.SyncQueueItem, error)

	// ListEligible returns pending and failed items with fewer than
	// maxRetries attempts ordered by priority, creation time and id.
	ListEligible(ctx context.Context, maxRetries int) ([]models.SyncQueueItem, error)

	// List returns up to limit items (all when limit <= 0) in upload order.
	List(ctx context.Context, limit int) ([]models.SyncQueueItem, error)

	Update(ctx context.Context, id int64, upd models.QueueItemUpdate) error
	Delete(ctx context.Context, id int64) error

	// SetPrerequisite stores serverID on every item of the given types that
	// shares correlationID and returns how many were updated.
	SetPrerequisite(ctx context.Context, correlationID, serverID string, types []models.ItemType) (int64, error)

	// FailExhausted marks pending items that already used maxRetries
	// attempts as failed and returns how many were moved.
	FailExhausted(ctx context.Context, maxRetries int) (int64, error)

	ResetFailed(ctx context.Context) (int64, error)
	DeleteFailed(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (models.QueueStats, error)
}

// SyncLogRepository persists the append-only sync log.
type SyncLogRepository interface {
	Append(ctx context.Context, entry models.SyncLogEntry) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.SyncLogEntry, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SyncMetaRepository is the key/value store of sync metadata.
type SyncMetaRepository interface {
	// Get returns the value under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// MediaRepository persists photo and signature blobs.
type MediaRepository interface {
	Save(ctx context.Context, media models.MediaFile) (int64, error)
	Get(ctx context.Context, kind models.MediaKind, id int64) (models.MediaFile, error)
	MarkSynced(ctx context.Context, kind models.MediaKind, id int64, remoteRef string) error
}
