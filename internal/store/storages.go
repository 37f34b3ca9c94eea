// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
)

// Storages groups all repositories of the local store so that they can be
// passed to the service layer as one value. They share a single [DB].
type Storages struct {
	Tables  Tables
	Queue   SyncQueueRepository
	SyncLog SyncLogRepository
	Meta    SyncMetaRepository
	Media   MediaRepository

	db *DB
}

// NewStorages opens the database named by cfg.DB.DSN, applies pending
// migrations and wires the repositories.
func NewStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewDB(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return NewStoragesFromDB(db, logger), nil
}

// NewStoragesFromDB wires the repositories over an already migrated db.
func NewStoragesFromDB(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		Tables:  NewTables(db, logger),
		Queue:   NewSyncQueueRepository(db, logger),
		SyncLog: NewSyncLogRepository(db, logger),
		Meta:    NewSyncMetaRepository(db, logger),
		Media:   NewMediaRepository(db, logger),
		db:      db,
	}
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dialect reports the SQL backend behind the storages.
func (s *Storages) Dialect() string {
	return s.db.Dialect()
}
