// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/logger"
)

const defaultMaintenanceInterval = time.Hour

// MaintenanceJob prunes the sync log and evicts stale cached reference
// data. A zero retention disables the corresponding step.
type MaintenanceJob struct {
	syncLog        LogPruner
	cache          CacheEvicter
	interval       time.Duration
	logRetention   time.Duration
	cacheRetention time.Duration
	now            func() time.Time
	logger         *logger.Logger
}

// MaintenanceConfig holds the intervals of [MaintenanceJob].
type MaintenanceConfig struct {
	Interval       time.Duration
	LogRetention   time.Duration
	CacheRetention time.Duration
}

func NewMaintenanceJob(syncLog LogPruner, cache CacheEvicter, cfg MaintenanceConfig, logger *logger.Logger) *MaintenanceJob {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultMaintenanceInterval
	}
	return &MaintenanceJob{
		syncLog:        syncLog,
		cache:          cache,
		interval:       cfg.Interval,
		logRetention:   cfg.LogRetention,
		cacheRetention: cfg.CacheRetention,
		now:            time.Now,
		logger:         logger,
	}
}

func (j *MaintenanceJob) Name() string { return "maintenance" }

func (j *MaintenanceJob) Run(ctx context.Context) error {
	return every(j.logger.WithContext(ctx), j.interval, true, j.runOnce)
}

func (j *MaintenanceJob) runOnce(ctx context.Context) {
	log := logger.FromContext(ctx)

	if j.logRetention > 0 {
		n, err := j.syncLog.PruneOlderThan(ctx, j.now().Add(-j.logRetention))
		if err != nil {
			log.Warn().Err(err).Str("func", "MaintenanceJob.runOnce").Msg("failed to prune sync log")
		} else if n > 0 {
			log.Info().Str("func", "MaintenanceJob.runOnce").Int64("entries", n).Msg("sync log pruned")
		}
	}

	if j.cacheRetention > 0 {
		n, err := j.cache.Evict(ctx, j.cacheRetention)
		if err != nil {
			log.Warn().Err(err).Str("func", "MaintenanceJob.runOnce").Msg("failed to evict cached data")
		} else if n > 0 {
			log.Info().Str("func", "MaintenanceJob.runOnce").Int64("rows", n).Msg("stale cache evicted")
		}
	}
}
