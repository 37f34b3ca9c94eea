// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/validators"
	"github.com/MKhiriev/go-field-sync/models"
)

type attendanceHandler struct {
	handlerBase
}

func (h *attendanceHandler) Type() models.ItemType { return models.ItemTypeAttendance }

func (h *attendanceHandler) Abandon(ctx context.Context, item models.SyncQueueItem) {
	h.markCapturedFailed(ctx, store.TableCapturedAttendance, item.Payload)
}

func (h *attendanceHandler) Handle(ctx context.Context, item models.SyncQueueItem, strategy models.ConflictStrategy) (HandlerResult, error) {
	p, err := validators.DecodeAndValidate[models.AttendancePayload](ctx, h.validator, item.Payload)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("attendance %d: %w", item.ID, err)
	}

	res, err := h.remote.CreateAttendance(ctx, item.Payload, idempotencyKey(item))
	conflict, ok := asConflict(err)
	if !ok && err != nil {
		h.markAttemptFailed(ctx, store.TableCapturedAttendance, p.LocalID, err)
		return HandlerResult{}, fmt.Errorf("create %s attendance: %w", p.Kind, err)
	}
	if !ok {
		h.markSynced(ctx, store.TableCapturedAttendance, p.LocalID, res.ID, nil)
		return HandlerResult{ServerID: res.ID, Action: models.SyncActionSuccess}, nil
	}

	result := HandlerResult{
		ServerID: models.RemoteID(conflict.Existing),
		Action:   models.SyncActionConflictResolved,
		Message:  "already on server",
	}
	var resolved models.Record
	if len(conflict.Existing) > 0 {
		resolved, err = h.resolveConflict(ctx, item, conflict, strategy)
		if err != nil {
			return HandlerResult{}, fmt.Errorf("resolve attendance conflict: %w", err)
		}
		result.Message = fmt.Sprintf("already on server, resolved with %s", strategy)
	}
	h.markSynced(ctx, store.TableCapturedAttendance, p.LocalID, result.ServerID, resolved)
	return result, nil
}
