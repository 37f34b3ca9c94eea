// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/validators"
	"github.com/MKhiriev/go-field-sync/models"
)

type statusUpdateHandler struct {
	handlerBase
}

func (h *statusUpdateHandler) Type() models.ItemType { return models.ItemTypeStatusUpdate }

func (h *statusUpdateHandler) Handle(ctx context.Context, item models.SyncQueueItem, strategy models.ConflictStrategy) (HandlerResult, error) {
	p, err := validators.DecodeAndValidate[models.StatusUpdatePayload](ctx, h.validator, item.Payload)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("status update %d: %w", item.ID, err)
	}

	_, err = h.remote.UpdateTaskStatus(ctx, p.TaskID, item.Payload, idempotencyKey(item))
	conflict, ok := asConflict(err)
	if !ok && err != nil {
		return HandlerResult{}, fmt.Errorf("update status of task %s: %w", p.TaskID, err)
	}
	if !ok {
		return HandlerResult{ServerID: p.TaskID, Action: models.SyncActionSuccess}, nil
	}
	if len(conflict.Existing) == 0 {
		return HandlerResult{ServerID: p.TaskID, Action: models.SyncActionConflictResolved, Message: "already on server"}, nil
	}

	resolved, err := h.resolveConflict(ctx, item, conflict, strategy)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("resolve status conflict for task %s: %w", p.TaskID, err)
	}
	h.refreshCachedTask(ctx, p.TaskID, conflict.Existing, resolved)

	return HandlerResult{
		ServerID: p.TaskID,
		Action:   models.SyncActionConflictResolved,
		Message:  fmt.Sprintf("task changed on server, resolved with %s", strategy),
	}, nil
}

// refreshCachedTask lays the resolved status over the full task the remote
// returned so the cache keeps a complete document.
func (h *statusUpdateHandler) refreshCachedTask(ctx context.Context, taskID string, existing json.RawMessage, resolved models.Record) {
	task, err := decodeRecord(existing)
	if err != nil {
		return
	}
	for k, v := range resolved {
		task[k] = v
	}

	now := h.now().UnixMilli()
	_, err = h.tables.UpsertByRemoteID(ctx, store.TableCachedTasks, taskID, models.Record{
		"payload":      task,
		"cached_at":    now,
		"last_updated": now,
	})
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("func", "statusUpdateHandler.refreshCachedTask").
			Str("task_id", taskID).Msg("failed to refresh cached task")
	}
}
