// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

var dependentTypes = []models.ItemType{models.ItemTypeEPODPhoto, models.ItemTypeEPODSignature}

type syncQueue struct {
	repo   store.SyncQueueRepository
	now    func() time.Time
	logger *logger.Logger
}

func NewSyncQueue(repo store.SyncQueueRepository, logger *logger.Logger) SyncQueue {
	return &syncQueue{repo: repo, now: time.Now, logger: logger}
}

func (q *syncQueue) Enqueue(ctx context.Context, itemType models.ItemType, payload json.RawMessage, priority int, opts models.EnqueueOptions) (int64, error) {
	log := logger.FromContext(ctx)

	if !itemType.Valid() {
		return 0, &UnknownTypeError{Type: itemType}
	}
	if len(payload) == 0 || !json.Valid(payload) {
		return 0, fmt.Errorf("%w: payload of %s is not a JSON document", ErrInvalidPayload, itemType)
	}
	if priority <= 0 {
		priority = models.PriorityDefault
	}

	id, err := q.repo.Insert(ctx, models.SyncQueueItem{
		Type:           itemType,
		Payload:        payload,
		Status:         models.QueueStatusPending,
		CreatedAt:      q.now(),
		Priority:       priority,
		CorrelationID:  opts.CorrelationID,
		PrerequisiteID: opts.PrerequisiteID,
	})
	if err != nil {
		log.Err(err).Str("func", "syncQueue.Enqueue").Str("type", string(itemType)).Msg("failed to enqueue item")
		return 0, fmt.Errorf("enqueue %s: %w", itemType, err)
	}

	log.Debug().Str("func", "syncQueue.Enqueue").Int64("id", id).Str("type", string(itemType)).
		Int("priority", priority).Msg("item queued")
	return id, nil
}

func (q *syncQueue) NextBatch(ctx context.Context, maxRetries, batchSize int) ([][]models.SyncQueueItem, error) {
	if _, err := q.FailExhausted(ctx, maxRetries); err != nil {
		return nil, err
	}

	items, err := q.repo.ListEligible(ctx, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("list eligible items: %w", err)
	}
	return chunk(items, batchSize), nil
}

func chunk(items []models.SyncQueueItem, size int) [][]models.SyncQueueItem {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}

	batches := make([][]models.SyncQueueItem, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}

func (q *syncQueue) Get(ctx context.Context, id int64) (models.SyncQueueItem, error) {
	return q.repo.Get(ctx, id)
}

func (q *syncQueue) RecordSuccess(ctx context.Context, item models.SyncQueueItem) error {
	if err := q.repo.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("remove item %d: %w", item.ID, err)
	}
	return nil
}

func (q *syncQueue) RecordFailure(ctx context.Context, item models.SyncQueueItem, cause error, maxRetries int) error {
	retries := item.RetryCount + 1
	status := models.QueueStatusPending
	if retries >= maxRetries {
		status = models.QueueStatusFailed
	}
	return q.update(ctx, item, models.QueueItemUpdate{
		Status:       &status,
		RetryCount:   &retries,
		ConflictData: conflictData(cause),
	}, cause.Error())
}

// conflictData keeps what the remote answered to a 409 so that an item
// still in the retry cycle can be inspected.
func conflictData(err error) json.RawMessage {
	conflict, ok := asConflict(err)
	if !ok {
		return nil
	}
	if len(conflict.Existing) > 0 {
		return conflict.Existing
	}
	data, err := json.Marshal(models.ConflictBody{Message: conflict.Message})
	if err != nil {
		return nil
	}
	return data
}

func (q *syncQueue) RecordDeferred(ctx context.Context, item models.SyncQueueItem, reason string) error {
	return q.update(ctx, item, models.QueueItemUpdate{}, reason)
}

func (q *syncQueue) DeadLetter(ctx context.Context, item models.SyncQueueItem, cause error, maxRetries int) error {
	status := models.QueueStatusFailed
	retries := max(maxRetries, item.RetryCount)
	return q.update(ctx, item, models.QueueItemUpdate{
		Status:     &status,
		RetryCount: &retries,
	}, cause.Error())
}

func (q *syncQueue) Annotate(ctx context.Context, item models.SyncQueueItem, message string) error {
	if err := q.repo.Update(ctx, item.ID, models.QueueItemUpdate{ErrorMessage: &message}); err != nil {
		return fmt.Errorf("annotate item %d: %w", item.ID, err)
	}
	return nil
}

// update stamps the attempt time and message on top of upd.
func (q *syncQueue) update(ctx context.Context, item models.SyncQueueItem, upd models.QueueItemUpdate, message string) error {
	now := q.now()
	upd.LastAttempt = &now
	upd.ErrorMessage = &message
	if err := q.repo.Update(ctx, item.ID, upd); err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	return nil
}

func (q *syncQueue) ResolvePrerequisite(ctx context.Context, correlationID, serverID string) (int64, error) {
	if correlationID == "" || serverID == "" {
		return 0, nil
	}
	n, err := q.repo.SetPrerequisite(ctx, correlationID, serverID, dependentTypes)
	if err != nil {
		return 0, fmt.Errorf("resolve prerequisite of %s: %w", correlationID, err)
	}
	return n, nil
}

func (q *syncQueue) FailExhausted(ctx context.Context, maxRetries int) (int64, error) {
	n, err := q.repo.FailExhausted(ctx, maxRetries)
	if err != nil {
		return 0, fmt.Errorf("fail exhausted items: %w", err)
	}
	if n > 0 {
		logger.FromContext(ctx).Info().Str("func", "syncQueue.FailExhausted").Int64("count", n).
			Int("max_retries", maxRetries).Msg("pending items over the retry limit marked failed")
	}
	return n, nil
}

func (q *syncQueue) ResetFailed(ctx context.Context) (int64, error) {
	n, err := q.repo.ResetFailed(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset failed items: %w", err)
	}
	return n, nil
}

func (q *syncQueue) ClearFailed(ctx context.Context) (int64, error) {
	n, err := q.repo.DeleteFailed(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear failed items: %w", err)
	}
	return n, nil
}

func (q *syncQueue) PendingCount(ctx context.Context) (int, error) {
	stats, err := q.Stats(ctx)
	if err != nil {
		return 0, err
	}
	return stats.Total, nil
}

func (q *syncQueue) Stats(ctx context.Context) (models.QueueStats, error) {
	stats, err := q.repo.Stats(ctx)
	if err != nil {
		return models.QueueStats{}, fmt.Errorf("queue stats: %w", err)
	}
	return stats, nil
}

func (q *syncQueue) List(ctx context.Context, limit int) ([]models.SyncQueueItem, error) {
	items, err := q.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return items, nil
}
