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
)

const tableSyncMeta = "sync_meta"

type syncMetaRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewSyncMetaRepository(db *DB, logger *logger.Logger) SyncMetaRepository {
	return &syncMetaRepository{db: db, logger: logger}
}

func (r *syncMetaRepository) Get(ctx context.Context, key string) (string, error) {
	query, args, err := r.db.builder.Select("value").From(tableSyncMeta).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", r.db.storageError("get", tableSyncMeta, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta key %q: %w", key, ErrNotFound)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncMetaRepository.Get").Str("key", key).
			Msg("failed to read sync meta")
		return "", r.db.storageError("get", tableSyncMeta, fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	return value, nil
}

func (r *syncMetaRepository) Set(ctx context.Context, key, value string) error {
	q := r.db.builder.Insert(tableSyncMeta).
		Columns("key", "value", "updated_at").
		Values(key, value, toMillis(time.Now())).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at")

	if _, err := r.db.exec(ctx, "set", tableSyncMeta, q); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncMetaRepository.Set").Str("key", key).
			Msg("failed to write sync meta")
		return err
	}
	return nil
}
