// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/validators"
	"github.com/MKhiriev/go-field-sync/models"
)

// enqueuer is the part of [SyncEngine] the capture service needs.
type enqueuer interface {
	QueueForSync(ctx context.Context, itemType models.ItemType, payload json.RawMessage, priority int, opts models.EnqueueOptions) (int64, error)
}

type captureService struct {
	tables    store.Tables
	media     store.MediaRepository
	queue     enqueuer
	validator validators.Validator
	now       func() time.Time
	logger    *logger.Logger
}

func NewCaptureService(tables store.Tables, media store.MediaRepository, queue enqueuer, logger *logger.Logger) CaptureService {
	return &captureService{
		tables:    tables,
		media:     media,
		queue:     queue,
		validator: validators.NewPayloadValidator(),
		now:       time.Now,
		logger:    logger,
	}
}

// CaptureProof stores the proof and its media, then queues the media
// uploads before the proof itself so that the proof's success can hand its
// server id to queue items that already exist.
func (s *captureService) CaptureProof(ctx context.Context, capture models.ProofCapture) (models.CaptureReceipt, error) {
	log := logger.FromContext(ctx)

	proof := capture.Proof
	if err := s.validator.Validate(ctx, proof); err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("capture proof: %w", err)
	}

	media := map[models.MediaKind]*models.MediaCapture{
		models.MediaKindPhoto:     capture.Photo,
		models.MediaKindSignature: capture.Signature,
	}
	for kind, m := range media {
		if m == nil {
			continue
		}
		if err := validators.ValidateMedia(kind, m.Data); err != nil {
			return models.CaptureReceipt{}, fmt.Errorf("capture proof %s: %w", kind, err)
		}
	}

	now := s.now()
	if proof.UpdatedAt.IsZero() {
		proof.UpdatedAt = now
	}

	raw, err := json.Marshal(proof)
	if err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("encode proof: %w", err)
	}
	localID, err := s.tables.Append(ctx, store.TableCapturedProofs, models.Record{
		"task_id":     proof.TaskID,
		"payload":     raw,
		"sync_status": string(models.SyncStatusPending),
		"retry_count": 0,
		"created_at":  now.UnixMilli(),
		"updated_at":  now.UnixMilli(),
	})
	if err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("store proof: %w", err)
	}
	proof.LocalID = localID

	receipt := models.CaptureReceipt{LocalID: localID, MediaIDs: make(map[models.MediaKind]int64)}
	opts := models.EnqueueOptions{CorrelationID: proof.TaskID}

	for _, kind := range []models.MediaKind{models.MediaKindPhoto, models.MediaKindSignature} {
		m := media[kind]
		if m == nil {
			continue
		}

		mediaID, err := s.media.Save(ctx, models.MediaFile{
			Kind:      kind,
			TaskID:    proof.TaskID,
			ProofID:   localID,
			FileName:  m.FileName,
			MimeType:  validators.DetectMediaType(m.Data),
			Data:      m.Data,
			CreatedAt: now,
		})
		if err != nil {
			return receipt, fmt.Errorf("store %s: %w", kind, err)
		}
		receipt.MediaIDs[kind] = mediaID

		payload, err := json.Marshal(models.MediaPayload{MediaID: mediaID, TaskID: proof.TaskID, ProofLocalID: localID})
		if err != nil {
			return receipt, fmt.Errorf("encode %s payload: %w", kind, err)
		}
		queueID, err := s.queue.QueueForSync(ctx, mediaItemType(kind), payload, models.PriorityHigh, opts)
		if err != nil {
			return receipt, fmt.Errorf("queue %s: %w", kind, err)
		}
		receipt.QueueIDs = append(receipt.QueueIDs, queueID)
	}

	payload, err := json.Marshal(proof)
	if err != nil {
		return receipt, fmt.Errorf("encode proof: %w", err)
	}
	queueID, err := s.queue.QueueForSync(ctx, models.ItemTypeEPOD, payload, models.PriorityUrgent, opts)
	if err != nil {
		return receipt, fmt.Errorf("queue proof: %w", err)
	}
	receipt.QueueIDs = append(receipt.QueueIDs, queueID)

	log.Info().Str("func", "captureService.CaptureProof").Str("task_id", proof.TaskID).Int64("local_id", localID).
		Int("media", len(receipt.MediaIDs)).Msg("proof of delivery captured")
	return receipt, nil
}

func mediaItemType(kind models.MediaKind) models.ItemType {
	if kind == models.MediaKindSignature {
		return models.ItemTypeEPODSignature
	}
	return models.ItemTypeEPODPhoto
}

func (s *captureService) CaptureAttendance(ctx context.Context, attendance models.AttendancePayload) (models.CaptureReceipt, error) {
	if err := s.validator.Validate(ctx, attendance); err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("capture attendance: %w", err)
	}

	now := s.now()
	if attendance.UpdatedAt.IsZero() {
		attendance.UpdatedAt = now
	}

	raw, err := json.Marshal(attendance)
	if err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("encode attendance: %w", err)
	}
	validation, err := json.Marshal(attendance.Validation)
	if err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("encode attendance validation: %w", err)
	}

	localID, err := s.tables.Append(ctx, store.TableCapturedAttendance, models.Record{
		"kind":        string(attendance.Kind),
		"payload":     raw,
		"validation":  validation,
		"sync_status": string(models.SyncStatusPending),
		"retry_count": 0,
		"created_at":  now.UnixMilli(),
		"updated_at":  now.UnixMilli(),
	})
	if err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("store attendance: %w", err)
	}
	attendance.LocalID = localID

	payload, err := json.Marshal(attendance)
	if err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("encode attendance: %w", err)
	}
	queueID, err := s.queue.QueueForSync(ctx, models.ItemTypeAttendance, payload, models.PriorityHigh, models.EnqueueOptions{})
	if err != nil {
		return models.CaptureReceipt{LocalID: localID}, fmt.Errorf("queue attendance: %w", err)
	}

	return models.CaptureReceipt{LocalID: localID, QueueIDs: []int64{queueID}}, nil
}

// UpdateTaskStatus applies the new status to the cached task right away
// and queues it for upload.
func (s *captureService) UpdateTaskStatus(ctx context.Context, update models.StatusUpdatePayload) (models.CaptureReceipt, error) {
	if err := s.validator.Validate(ctx, update); err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("update task status: %w", err)
	}

	now := s.now()
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = now
	}

	s.applyToCache(ctx, update, now)

	payload, err := json.Marshal(update)
	if err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("encode status update: %w", err)
	}
	queueID, err := s.queue.QueueForSync(ctx, models.ItemTypeStatusUpdate, payload, models.PriorityUrgent,
		models.EnqueueOptions{CorrelationID: update.TaskID})
	if err != nil {
		return models.CaptureReceipt{}, fmt.Errorf("queue status update: %w", err)
	}

	return models.CaptureReceipt{QueueIDs: []int64{queueID}}, nil
}

func (s *captureService) applyToCache(ctx context.Context, update models.StatusUpdatePayload, now time.Time) {
	log := logger.FromContext(ctx)

	rows, err := s.tables.Query(ctx, store.TableCachedTasks, sq.Eq{"remote_id": update.TaskID})
	if err != nil || len(rows) == 0 {
		if err != nil {
			log.Warn().Err(err).Str("func", "captureService.applyToCache").Msg("failed to read cached task")
		}
		return
	}

	task, err := decodeRecord(json.RawMessage(rows[0].String("payload")))
	if err != nil {
		log.Warn().Err(err).Str("func", "captureService.applyToCache").Str("task_id", update.TaskID).
			Msg("cached task is not a JSON object")
		return
	}
	task["status"] = update.Status

	err = s.tables.UpdateFields(ctx, store.TableCachedTasks, rows[0].Int64("id"), models.Record{
		"payload":      task,
		"last_updated": now.UnixMilli(),
	})
	if err != nil {
		log.Warn().Err(err).Str("func", "captureService.applyToCache").Str("task_id", update.TaskID).
			Msg("failed to update cached task")
	}
}
