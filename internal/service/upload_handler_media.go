// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/validators"
	"github.com/MKhiriev/go-field-sync/models"
)

type mediaUploadFunc func(ctx context.Context, epodID string, media models.MediaUpload, idempotencyKey string) (models.UploadResult, error)

// mediaHandler uploads photos and signatures. Both need the server id of
// the proof they belong to.
type mediaHandler struct {
	handlerBase
	itemType models.ItemType
	kind     models.MediaKind
	upload   mediaUploadFunc
}

func newMediaHandler(base handlerBase, itemType models.ItemType, kind models.MediaKind, upload mediaUploadFunc) *mediaHandler {
	return &mediaHandler{handlerBase: base, itemType: itemType, kind: kind, upload: upload}
}

func (h *mediaHandler) Type() models.ItemType { return h.itemType }

func (h *mediaHandler) Handle(ctx context.Context, item models.SyncQueueItem, _ models.ConflictStrategy) (HandlerResult, error) {
	p, err := validators.DecodeAndValidate[models.MediaPayload](ctx, h.validator, item.Payload,
		validators.FieldMediaID, validators.FieldTaskID)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("%s %d: %w", h.itemType, item.ID, err)
	}
	if p.EPODServerID == "" {
		p.EPODServerID = item.PrerequisiteID
	}
	if p.EPODServerID == "" && p.ProofLocalID > 0 {
		// the proof may have been synced before this item was queued
		if proof, err := h.tables.Get(ctx, store.TableCapturedProofs, p.ProofLocalID); err == nil {
			p.EPODServerID = proof.String("server_id")
		}
	}
	if err = h.validator.Validate(ctx, p, validators.FieldPrerequisite); err != nil {
		return HandlerResult{}, fmt.Errorf("%s %d for task %s: %w", h.itemType, item.ID, p.TaskID, err)
	}

	media, err := h.media.Get(ctx, h.kind, p.MediaID)
	if errors.Is(err, store.ErrNotFound) {
		return HandlerResult{}, fmt.Errorf("%w: %s %d is gone: %w", validators.ErrValidation, h.kind, p.MediaID, err)
	}
	if err != nil {
		return HandlerResult{}, fmt.Errorf("load %s %d: %w", h.kind, p.MediaID, err)
	}
	if err = h.validator.Validate(ctx, media); err != nil {
		return HandlerResult{}, fmt.Errorf("%s %d: %w", h.kind, p.MediaID, err)
	}

	fileName := media.FileName
	if fileName == "" {
		fileName = fmt.Sprintf("%s-%d", h.kind, media.ID)
	}
	upload := models.MediaUpload{
		FieldName: string(h.kind),
		FileName:  fileName,
		MimeType:  validators.DetectMediaType(media.Data),
		Data:      media.Data,
	}

	var result HandlerResult
	res, err := h.upload(ctx, p.EPODServerID, upload, idempotencyKey(item))
	if conflict, ok := asConflict(err); ok {
		result = HandlerResult{
			ServerID: models.RemoteID(conflict.Existing),
			Action:   models.SyncActionConflictResolved,
			Message:  "already on server",
		}
	} else if err != nil {
		return HandlerResult{}, fmt.Errorf("upload %s %d for epod %s: %w", h.kind, p.MediaID, p.EPODServerID, err)
	} else {
		result = HandlerResult{ServerID: res.ID, Action: models.SyncActionSuccess}
	}

	if err = h.media.MarkSynced(ctx, h.kind, p.MediaID, result.ServerID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("func", "mediaHandler.Handle").
			Str("kind", string(h.kind)).Int64("media_id", p.MediaID).Msg("failed to write back synced state")
	}
	return result, nil
}
