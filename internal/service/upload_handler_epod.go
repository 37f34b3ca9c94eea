// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/validators"
	"github.com/MKhiriev/go-field-sync/models"
)

type epodHandler struct {
	handlerBase
}

func (h *epodHandler) Type() models.ItemType { return models.ItemTypeEPOD }

func (h *epodHandler) Abandon(ctx context.Context, item models.SyncQueueItem) {
	h.markCapturedFailed(ctx, store.TableCapturedProofs, item.Payload)
}

func (h *epodHandler) Handle(ctx context.Context, item models.SyncQueueItem, strategy models.ConflictStrategy) (HandlerResult, error) {
	log := logger.FromContext(ctx)

	p, err := validators.DecodeAndValidate[models.EPODPayload](ctx, h.validator, item.Payload)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("epod %d: %w", item.ID, err)
	}

	var result HandlerResult
	res, err := h.remote.CreateEPOD(ctx, item.Payload, idempotencyKey(item))
	if conflict, ok := asConflict(err); ok {
		// without the existing record there is no server id to hand to the
		// photo and signature, so the item stays in the retry cycle
		if len(conflict.Existing) == 0 {
			h.markAttemptFailed(ctx, store.TableCapturedProofs, p.LocalID, err)
			return HandlerResult{}, fmt.Errorf("create epod for task %s: %w", p.TaskID, err)
		}

		resolved, err := h.resolveConflict(ctx, item, conflict, strategy)
		if err != nil {
			return HandlerResult{}, fmt.Errorf("resolve epod conflict for task %s: %w", p.TaskID, err)
		}
		result = HandlerResult{
			ServerID: models.RemoteID(conflict.Existing),
			Action:   models.SyncActionConflictResolved,
			Message:  fmt.Sprintf("already on server, resolved with %s", strategy),
		}
		h.markSynced(ctx, store.TableCapturedProofs, p.LocalID, result.ServerID, resolved)
	} else if err != nil {
		h.markAttemptFailed(ctx, store.TableCapturedProofs, p.LocalID, err)
		return HandlerResult{}, fmt.Errorf("create epod for task %s: %w", p.TaskID, err)
	} else {
		result = HandlerResult{ServerID: res.ID, Action: models.SyncActionSuccess}
		h.markSynced(ctx, store.TableCapturedProofs, p.LocalID, res.ID, nil)
	}

	if result.ServerID == "" {
		log.Warn().Str("func", "epodHandler.Handle").Str("task_id", p.TaskID).
			Msg("remote returned no id for the proof, dependent uploads stay deferred")
		return result, nil
	}

	correlationID := item.CorrelationID
	if correlationID == "" {
		correlationID = p.TaskID
	}
	n, err := h.queue.ResolvePrerequisite(ctx, correlationID, result.ServerID)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("epod %d: %w", item.ID, err)
	}

	log.Debug().Str("func", "epodHandler.Handle").Str("task_id", p.TaskID).Str("server_id", result.ServerID).
		Int64("dependents", n).Msg("proof of delivery uploaded")
	return result, nil
}
