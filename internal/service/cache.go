// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

type cacheService struct {
	remote adapter.RemoteAdapter
	tables store.Tables
	now    func() time.Time
	logger *logger.Logger
}

func NewCacheService(remote adapter.RemoteAdapter, tables store.Tables, logger *logger.Logger) CacheService {
	return &cacheService{remote: remote, tables: tables, now: time.Now, logger: logger}
}

func (s *cacheService) RefreshTasks(ctx context.Context) (int, error) {
	return s.refresh(ctx, store.TableCachedTasks, s.remote.FetchTasks)
}

func (s *cacheService) RefreshSchools(ctx context.Context) (int, error) {
	return s.refresh(ctx, store.TableCachedSchools, s.remote.FetchSchools)
}

func (s *cacheService) refresh(ctx context.Context, table string, fetch func(context.Context) ([]json.RawMessage, error)) (int, error) {
	log := logger.FromContext(ctx)

	docs, err := fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh %s: %w", table, err)
	}

	now := s.now().UnixMilli()
	stored := 0
	for _, doc := range docs {
		remoteID := models.RemoteID(doc)
		if remoteID == "" {
			log.Warn().Str("func", "cacheService.refresh").Str("table", table).Msg("skipping record without id")
			continue
		}

		_, err = s.tables.UpsertByRemoteID(ctx, table, remoteID, models.Record{
			"payload":      doc,
			"cached_at":    now,
			"last_updated": now,
		})
		if err != nil {
			return stored, fmt.Errorf("cache %s %s: %w", table, remoteID, err)
		}
		stored++
	}

	log.Debug().Str("func", "cacheService.refresh").Str("table", table).Int("count", stored).Msg("reference data refreshed")
	return stored, nil
}

func (s *cacheService) Tasks(ctx context.Context) ([]models.CachedEntity, error) {
	return s.list(ctx, store.TableCachedTasks)
}

func (s *cacheService) Schools(ctx context.Context) ([]models.CachedEntity, error) {
	return s.list(ctx, store.TableCachedSchools)
}

func (s *cacheService) list(ctx context.Context, table string) ([]models.CachedEntity, error) {
	rows, err := s.tables.Query(ctx, table, nil, "remote_id ASC")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	out := make([]models.CachedEntity, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.CachedEntity{
			LocalID:     row.Int64("id"),
			RemoteID:    row.String("remote_id"),
			Data:        json.RawMessage(row.String("payload")),
			CachedAt:    time.UnixMilli(row.Int64("cached_at")).UTC(),
			LastUpdated: time.UnixMilli(row.Int64("last_updated")).UTC(),
		})
	}
	return out, nil
}

func (s *cacheService) Evict(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-maxAge).UnixMilli()

	var total int64
	for _, table := range []string{store.TableCachedTasks, store.TableCachedSchools} {
		n, err := s.tables.DeleteWhere(ctx, table, sq.Lt{"cached_at": cutoff})
		if err != nil {
			return total, fmt.Errorf("evict %s: %w", table, err)
		}
		total += n
	}
	return total, nil
}
