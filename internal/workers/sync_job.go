// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/logger"
)

const defaultSyncInterval = 5 * time.Minute

// SyncJob triggers a sync run on a fixed interval while auto sync is on.
// Runs rejected as offline or already running are skipped silently.
type SyncJob struct {
	engine   SyncTrigger
	interval time.Duration
	logger   *logger.Logger
}

// NewSyncJob returns a [SyncJob]. A non-positive interval defaults to five
// minutes.
func NewSyncJob(engine SyncTrigger, interval time.Duration, logger *logger.Logger) *SyncJob {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &SyncJob{engine: engine, interval: interval, logger: logger}
}

func (j *SyncJob) Name() string { return "periodic-sync" }

func (j *SyncJob) Run(ctx context.Context) error {
	return every(j.logger.WithContext(ctx), j.interval, false, j.tick)
}

func (j *SyncJob) tick(ctx context.Context) {
	log := logger.FromContext(ctx)

	settings, err := j.engine.Settings(ctx)
	if err != nil {
		log.Warn().Err(err).Str("func", "SyncJob.tick").Msg("failed to read sync settings")
		return
	}
	if !settings.AutoSync {
		return
	}

	res := j.engine.TriggerSync(ctx)
	if !res.Started {
		log.Debug().Str("func", "SyncJob.tick").Str("reason", res.Reason).Msg("periodic sync skipped")
		return
	}
	log.Info().Str("func", "SyncJob.tick").Str("run_id", res.Progress.RunID).
		Str("status", string(res.Progress.Status)).Msg("periodic sync finished")
}
