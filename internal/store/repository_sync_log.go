// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

const tableSyncLog = "sync_log"

type syncLogRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewSyncLogRepository(db *DB, logger *logger.Logger) SyncLogRepository {
	return &syncLogRepository{db: db, logger: logger}
}

func (r *syncLogRepository) Append(ctx context.Context, entry models.SyncLogEntry) (int64, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	q := r.db.builder.Insert(tableSyncLog).
		Columns("run_id", "queue_item_id", "item_type", "action", "message", "duration_ms", "payload_size", "created_at").
		Values(
			entry.RunID,
			entry.QueueItemID,
			string(entry.ItemType),
			string(entry.Action),
			entry.Message,
			entry.DurationMS,
			entry.PayloadSize,
			toMillis(entry.CreatedAt),
		).
		Suffix("RETURNING id")

	id, err := r.db.insertReturningID(ctx, "append", tableSyncLog, q)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncLogRepository.Append").
			Int64("queue_item_id", entry.QueueItemID).Msg("failed to append sync log entry")
		return 0, err
	}
	return id, nil
}

// Recent returns up to limit entries, newest first.
func (r *syncLogRepository) Recent(ctx context.Context, limit int) ([]models.SyncLogEntry, error) {
	log := logger.FromContext(ctx)

	q := r.db.builder.
		Select("id", "run_id", "queue_item_id", "item_type", "action", "message", "duration_ms", "payload_size", "created_at").
		From(tableSyncLog).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, r.db.storageError("recent", tableSyncLog, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "syncLogRepository.Recent").Msg("failed to query sync log")
		return nil, r.db.storageError("recent", tableSyncLog, fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	var entries []models.SyncLogEntry
	for rows.Next() {
		var (
			e         models.SyncLogEntry
			itemType  string
			action    string
			createdAt int64
		)
		if err = rows.Scan(&e.ID, &e.RunID, &e.QueueItemID, &itemType, &action, &e.Message,
			&e.DurationMS, &e.PayloadSize, &createdAt); err != nil {
			return nil, r.db.storageError("recent", tableSyncLog, fmt.Errorf("%w: %w", ErrScanningRows, err))
		}
		e.ItemType = models.ItemType(itemType)
		e.Action = models.SyncAction(action)
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, r.db.storageError("recent", tableSyncLog, fmt.Errorf("%w: %w", ErrScanningRows, err))
	}

	return entries, nil
}

func (r *syncLogRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.db.exec(ctx, "prune", tableSyncLog,
		r.db.builder.Delete(tableSyncLog).Where(sq.Lt{"created_at": toMillis(cutoff)}))
}
