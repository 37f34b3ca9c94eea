// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

var mediaTables = map[models.MediaKind]string{
	models.MediaKindPhoto:     "media_photos",
	models.MediaKindSignature: "media_signatures",
}

func mediaTable(kind models.MediaKind) (string, error) {
	table, ok := mediaTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: media kind %q", ErrUnknownTable, kind)
	}
	return table, nil
}

type mediaRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewMediaRepository(db *DB, logger *logger.Logger) MediaRepository {
	return &mediaRepository{db: db, logger: logger}
}

func (r *mediaRepository) Save(ctx context.Context, media models.MediaFile) (int64, error) {
	table, err := mediaTable(media.Kind)
	if err != nil {
		return 0, err
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now()
	}
	if media.SyncStatus == "" {
		media.SyncStatus = models.SyncStatusPending
	}
	if media.Size == 0 {
		media.Size = int64(len(media.Data))
	}

	q := r.db.builder.Insert(table).
		Columns("task_id", "proof_id", "file_name", "mime_type", "size", "data", "sync_status", "remote_ref", "created_at").
		Values(media.TaskID, media.ProofID, media.FileName, media.MimeType, media.Size, media.Data,
			string(media.SyncStatus), media.RemoteRef, toMillis(media.CreatedAt)).
		Suffix("RETURNING id")

	id, err := r.db.insertReturningID(ctx, "save", table, q)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "mediaRepository.Save").Str("table", table).
			Msg("failed to save media")
		return 0, err
	}
	return id, nil
}

func (r *mediaRepository) Get(ctx context.Context, kind models.MediaKind, id int64) (models.MediaFile, error) {
	table, err := mediaTable(kind)
	if err != nil {
		return models.MediaFile{}, err
	}

	query, args, err := r.db.builder.
		Select("id", "task_id", "proof_id", "file_name", "mime_type", "size", "data", "sync_status", "remote_ref", "created_at").
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.MediaFile{}, r.db.storageError("get", table, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	var (
		media     = models.MediaFile{Kind: kind}
		status    string
		createdAt int64
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&media.ID, &media.TaskID, &media.ProofID, &media.FileName,
		&media.MimeType, &media.Size, &media.Data, &status, &media.RemoteRef, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MediaFile{}, fmt.Errorf("%s id=%d: %w", table, id, ErrNotFound)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "mediaRepository.Get").Str("table", table).
			Int64("id", id).Msg("failed to read media")
		return models.MediaFile{}, r.db.storageError("get", table, fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}

	media.SyncStatus = models.SyncStatus(status)
	media.CreatedAt = fromMillis(createdAt)
	return media, nil
}

func (r *mediaRepository) MarkSynced(ctx context.Context, kind models.MediaKind, id int64, remoteRef string) error {
	table, err := mediaTable(kind)
	if err != nil {
		return err
	}

	n, err := r.db.exec(ctx, "mark synced", table,
		r.db.builder.Update(table).
			Set("sync_status", string(models.SyncStatusSynced)).
			Set("remote_ref", remoteRef).
			Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s id=%d: %w", table, id, ErrNotFound)
	}
	return nil
}
