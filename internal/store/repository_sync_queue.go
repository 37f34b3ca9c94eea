// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

const tableSyncQueue = "sync_queue"

var queueColumns = []string{
	"id", "type", "payload", "status", "retry_count", "last_attempt", "created_at",
	"priority", "error_message", "conflict_data", "correlation_id", "prerequisite_id",
}

// queueOrder is the upload order: urgency, then age, then insertion.
var queueOrder = []string{"priority ASC", "created_at ASC", "id ASC"}

type syncQueueRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewSyncQueueRepository returns a [SyncQueueRepository] backed by db.
func NewSyncQueueRepository(db *DB, logger *logger.Logger) SyncQueueRepository {
	return &syncQueueRepository{db: db, logger: logger}
}

func (r *syncQueueRepository) Insert(ctx context.Context, item models.SyncQueueItem) (int64, error) {
	log := logger.FromContext(ctx)

	q := r.db.builder.Insert(tableSyncQueue).
		Columns("type", "payload", "status", "retry_count", "last_attempt", "created_at",
			"priority", "error_message", "conflict_data", "correlation_id", "prerequisite_id").
		Values(
			string(item.Type),
			string(item.Payload),
			string(item.Status),
			item.RetryCount,
			nullableMillis(item.LastAttempt),
			toMillis(item.CreatedAt),
			item.Priority,
			item.ErrorMessage,
			nullableJSON(item.ConflictData),
			item.CorrelationID,
			item.PrerequisiteID,
		).
		Suffix("RETURNING id")

	id, err := r.db.insertReturningID(ctx, "insert", tableSyncQueue, q)
	if err != nil {
		log.Err(err).
			Str("func", "syncQueueRepository.Insert").
			Str("type", string(item.Type)).
			Msg("failed to insert queue item")
		return 0, err
	}
	return id, nil
}

func (r *syncQueueRepository) Get(ctx context.Context, id int64) (models.SyncQueueItem, error) {
	items, err := r.selectItems(ctx, "get",
		r.db.builder.Select(queueColumns...).From(tableSyncQueue).Where(sq.Eq{"id": id}))
	if err != nil {
		return models.SyncQueueItem{}, err
	}
	if len(items) == 0 {
		return models.SyncQueueItem{}, fmt.Errorf("queue item id=%d: %w", id, ErrNotFound)
	}
	return items[0], nil
}

func (r *syncQueueRepository) ListEligible(ctx context.Context, maxRetries int) ([]models.SyncQueueItem, error) {
	q := r.db.builder.Select(queueColumns...).From(tableSyncQueue).
		Where(sq.And{
			sq.Eq{"status": []string{string(models.QueueStatusPending), string(models.QueueStatusFailed)}},
			sq.Lt{"retry_count": maxRetries},
		}).
		OrderBy(queueOrder...)

	return r.selectItems(ctx, "list eligible", q)
}

func (r *syncQueueRepository) List(ctx context.Context, limit int) ([]models.SyncQueueItem, error) {
	q := r.db.builder.Select(queueColumns...).From(tableSyncQueue).OrderBy(queueOrder...)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.selectItems(ctx, "list", q)
}

func (r *syncQueueRepository) Update(ctx context.Context, id int64, upd models.QueueItemUpdate) error {
	log := logger.FromContext(ctx)

	set := map[string]any{}
	if upd.Status != nil {
		set["status"] = string(*upd.Status)
	}
	if upd.RetryCount != nil {
		set["retry_count"] = *upd.RetryCount
	}
	if upd.LastAttempt != nil {
		set["last_attempt"] = toMillis(*upd.LastAttempt)
	}
	if upd.ErrorMessage != nil {
		set["error_message"] = *upd.ErrorMessage
	}
	if upd.ConflictData != nil {
		set["conflict_data"] = string(upd.ConflictData)
	}
	if upd.PrerequisiteID != nil {
		set["prerequisite_id"] = *upd.PrerequisiteID
	}
	if len(set) == 0 {
		return nil
	}

	n, err := r.db.exec(ctx, "update", tableSyncQueue,
		r.db.builder.Update(tableSyncQueue).SetMap(set).Where(sq.Eq{"id": id}))
	if err != nil {
		log.Err(err).Str("func", "syncQueueRepository.Update").Int64("id", id).Msg("failed to update queue item")
		return err
	}
	if n == 0 {
		return fmt.Errorf("queue item id=%d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the item. Deleting an absent item is not an error.
func (r *syncQueueRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.exec(ctx, "delete", tableSyncQueue,
		r.db.builder.Delete(tableSyncQueue).Where(sq.Eq{"id": id}))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncQueueRepository.Delete").Int64("id", id).
			Msg("failed to delete queue item")
	}
	return err
}

func (r *syncQueueRepository) SetPrerequisite(ctx context.Context, correlationID, serverID string, types []models.ItemType) (int64, error) {
	if correlationID == "" || len(types) == 0 {
		return 0, nil
	}

	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	return r.db.exec(ctx, "set prerequisite", tableSyncQueue,
		r.db.builder.Update(tableSyncQueue).
			Set("prerequisite_id", serverID).
			Where(sq.Eq{"correlation_id": correlationID, "type": typeNames}))
}

func (r *syncQueueRepository) FailExhausted(ctx context.Context, maxRetries int) (int64, error) {
	return r.db.exec(ctx, "fail exhausted", tableSyncQueue,
		r.db.builder.Update(tableSyncQueue).
			Set("status", string(models.QueueStatusFailed)).
			Where(sq.And{
				sq.Eq{"status": string(models.QueueStatusPending)},
				sq.GtOrEq{"retry_count": maxRetries},
			}))
}

func (r *syncQueueRepository) ResetFailed(ctx context.Context) (int64, error) {
	return r.db.exec(ctx, "reset failed", tableSyncQueue,
		r.db.builder.Update(tableSyncQueue).
			Set("status", string(models.QueueStatusPending)).
			Set("retry_count", 0).
			Set("error_message", "").
			Where(sq.Eq{"status": string(models.QueueStatusFailed)}))
}

func (r *syncQueueRepository) DeleteFailed(ctx context.Context) (int64, error) {
	return r.db.exec(ctx, "delete failed", tableSyncQueue,
		r.db.builder.Delete(tableSyncQueue).Where(sq.Eq{"status": string(models.QueueStatusFailed)}))
}

func (r *syncQueueRepository) Stats(ctx context.Context) (models.QueueStats, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.Select("status", "COUNT(*)").From(tableSyncQueue).GroupBy("status").ToSql()
	if err != nil {
		return models.QueueStats{}, r.db.storageError("stats", tableSyncQueue, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "syncQueueRepository.Stats").Msg("failed to count queue items")
		return models.QueueStats{}, r.db.storageError("stats", tableSyncQueue, fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	var stats models.QueueStats
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err = rows.Scan(&status, &count); err != nil {
			return models.QueueStats{}, r.db.storageError("stats", tableSyncQueue, fmt.Errorf("%w: %w", ErrScanningRows, err))
		}
		switch models.QueueStatus(status) {
		case models.QueueStatusPending:
			stats.Pending = count
		case models.QueueStatusFailed:
			stats.Failed = count
		}
		stats.Total += count
	}
	if err = rows.Err(); err != nil {
		return models.QueueStats{}, r.db.storageError("stats", tableSyncQueue, fmt.Errorf("%w: %w", ErrScanningRows, err))
	}

	return stats, nil
}

func (r *syncQueueRepository) selectItems(ctx context.Context, op string, q sq.SelectBuilder) ([]models.SyncQueueItem, error) {
	log := logger.FromContext(ctx)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, r.db.storageError(op, tableSyncQueue, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "syncQueueRepository.selectItems").Str("op", op).Msg("failed to query queue items")
		return nil, r.db.storageError(op, tableSyncQueue, fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	var items []models.SyncQueueItem
	for rows.Next() {
		var (
			item         models.SyncQueueItem
			itemType     string
			payload      string
			status       string
			lastAttempt  sql.NullInt64
			createdAt    int64
			conflictData sql.NullString
		)
		err = rows.Scan(
			&item.ID,
			&itemType,
			&payload,
			&status,
			&item.RetryCount,
			&lastAttempt,
			&createdAt,
			&item.Priority,
			&item.ErrorMessage,
			&conflictData,
			&item.CorrelationID,
			&item.PrerequisiteID,
		)
		if err != nil {
			log.Err(err).Str("func", "syncQueueRepository.selectItems").Msg("failed to scan queue item row")
			return nil, r.db.storageError(op, tableSyncQueue, fmt.Errorf("%w: %w", ErrScanningRows, err))
		}

		item.Type = models.ItemType(itemType)
		item.Payload = []byte(payload)
		item.Status = models.QueueStatus(status)
		item.LastAttempt = timeFromNull(lastAttempt)
		item.CreatedAt = fromMillis(createdAt)
		if conflictData.Valid && conflictData.String != "" {
			item.ConflictData = []byte(conflictData.String)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, r.db.storageError(op, tableSyncQueue, fmt.Errorf("%w: %w", ErrScanningRows, err))
	}
	return items, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
