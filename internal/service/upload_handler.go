// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/utils"
	"github.com/MKhiriev/go-field-sync/internal/validators"
	"github.com/MKhiriev/go-field-sync/models"
)

// UploadHandlers dispatches queued items to the handler of their type.
type UploadHandlers struct {
	handlers map[models.ItemType]UploadHandler
}

func NewUploadHandlers(handlers ...UploadHandler) *UploadHandlers {
	h := &UploadHandlers{handlers: make(map[models.ItemType]UploadHandler, len(handlers))}
	for _, handler := range handlers {
		h.handlers[handler.Type()] = handler
	}
	return h
}

// HandlerDeps are the collaborators shared by the built-in handlers.
type HandlerDeps struct {
	Remote    adapter.RemoteAdapter
	Tables    store.Tables
	Media     store.MediaRepository
	Queue     SyncQueue
	Validator validators.Validator
	Logger    *logger.Logger
}

// NewDefaultUploadHandlers registers a handler for every item type.
func NewDefaultUploadHandlers(deps HandlerDeps) *UploadHandlers {
	base := newHandlerBase(deps)
	return NewUploadHandlers(
		&epodHandler{handlerBase: base},
		newMediaHandler(base, models.ItemTypeEPODPhoto, models.MediaKindPhoto, deps.Remote.UploadEPODPhoto),
		newMediaHandler(base, models.ItemTypeEPODSignature, models.MediaKindSignature, deps.Remote.UploadEPODSignature),
		&statusUpdateHandler{handlerBase: base},
		&attendanceHandler{handlerBase: base},
	)
}

func (h *UploadHandlers) Handle(ctx context.Context, item models.SyncQueueItem, strategy models.ConflictStrategy) (HandlerResult, error) {
	handler, ok := h.handlers[item.Type]
	if !ok {
		return HandlerResult{}, &UnknownTypeError{Type: item.Type}
	}
	return handler.Handle(ctx, item, strategy)
}

// Abandoner is implemented by handlers that keep a captured row beside the
// queue item.
type Abandoner interface {
	// Abandon marks the captured row of an item that left the retry cycle
	// as failed.
	Abandon(ctx context.Context, item models.SyncQueueItem)
}

// Abandon forwards to the handler of the item type when it keeps a
// captured row.
func (h *UploadHandlers) Abandon(ctx context.Context, item models.SyncQueueItem) {
	if a, ok := h.handlers[item.Type].(Abandoner); ok {
		a.Abandon(ctx, item)
	}
}

type handlerBase struct {
	remote    adapter.RemoteAdapter
	tables    store.Tables
	media     store.MediaRepository
	queue     SyncQueue
	validator validators.Validator
	now       func() time.Time
	logger    *logger.Logger
}

func newHandlerBase(deps HandlerDeps) handlerBase {
	v := deps.Validator
	if v == nil {
		v = validators.NewPayloadValidator()
	}
	return handlerBase{
		remote:    deps.Remote,
		tables:    deps.Tables,
		media:     deps.Media,
		queue:     deps.Queue,
		validator: v,
		now:       time.Now,
		logger:    deps.Logger,
	}
}

func idempotencyKey(item models.SyncQueueItem) string {
	return utils.IdempotencyKey(string(item.Type), item.Payload)
}

// asConflict reports whether err is a 409 answer.
func asConflict(err error) (*adapter.ConflictError, bool) {
	var conflict *adapter.ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}

// resolveConflict runs the local payload and the record the remote already
// holds through [Resolve]. An unknown strategy falls back to server wins.
func (b handlerBase) resolveConflict(ctx context.Context, item models.SyncQueueItem, conflict *adapter.ConflictError, strategy models.ConflictStrategy) (models.Record, error) {
	local, err := decodeRecord(item.Payload)
	if err != nil {
		return nil, err
	}
	remote, err := decodeRecord(conflict.Existing)
	if err != nil {
		return nil, fmt.Errorf("existing record: %w", err)
	}

	resolved, err := Resolve(local, remote, strategy)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Str("func", "handlerBase.resolveConflict").
			Str("strategy", string(strategy)).Msg("conflict strategy is misconfigured, server version kept")
	}
	return resolved, nil
}

// markSynced records the server id on a captured row. The remote has
// already accepted the record, so a failed write-back is only logged.
func (b handlerBase) markSynced(ctx context.Context, table string, localID int64, serverID string, payload models.Record) {
	if localID <= 0 {
		return
	}

	now := b.now().UnixMilli()
	fields := models.Record{
		"server_id":    serverID,
		"sync_status":  string(models.SyncStatusSynced),
		"last_attempt": now,
		"updated_at":   now,
	}
	if payload != nil {
		fields["payload"] = payload
	}

	if err := b.tables.UpdateFields(ctx, table, localID, fields); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("func", "handlerBase.markSynced").
			Str("table", table).Int64("local_id", localID).Msg("failed to write back synced state")
	}
}

// markAttemptFailed records an unsuccessful upload on a captured row. The
// row stays pending while its queue item is in the retry cycle; connectivity
// failures do not count as attempts, matching the queue.
func (b handlerBase) markAttemptFailed(ctx context.Context, table string, localID int64, cause error) {
	if localID <= 0 {
		return
	}
	log := logger.FromContext(ctx)

	fields := models.Record{
		"sync_status":  string(models.SyncStatusPending),
		"last_attempt": b.now().UnixMilli(),
	}
	if !errors.Is(cause, adapter.ErrConnectivity) {
		row, err := b.tables.Get(ctx, table, localID)
		if err != nil {
			log.Warn().Err(err).Str("func", "handlerBase.markAttemptFailed").Str("table", table).
				Int64("local_id", localID).Msg("failed to load captured record")
			return
		}
		fields["retry_count"] = row.Int64("retry_count") + 1
	}

	err := b.tables.UpdateFields(ctx, table, localID, fields)
	if err != nil {
		log.Warn().Err(err).Str("func", "handlerBase.markAttemptFailed").Str("table", table).
			Int64("local_id", localID).Msg("failed to record attempt")
	}
}

// markCapturedFailed flags the captured row referenced by the payload's
// local_id as failed.
func (b handlerBase) markCapturedFailed(ctx context.Context, table string, payload json.RawMessage) {
	var ref struct {
		LocalID int64 `json:"local_id"`
	}
	if err := json.Unmarshal(payload, &ref); err != nil || ref.LocalID <= 0 {
		return
	}

	err := b.tables.UpdateFields(ctx, table, ref.LocalID, models.Record{
		"sync_status": string(models.SyncStatusFailed),
		"updated_at":  b.now().UnixMilli(),
	})
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("func", "handlerBase.markCapturedFailed").Str("table", table).
			Int64("local_id", ref.LocalID).Msg("failed to mark captured record failed")
	}
}
