// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the background jobs of the sync engine: the
// periodic sync trigger, the connectivity poller, log and cache
// maintenance and the settings file watcher.
//
// Every job implements [Worker]; [Workers] runs them together and stops
// them all when the first one fails or the context is cancelled.
package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-sync/models"
)

// Worker is a background job. Run blocks until ctx is cancelled or the job
// fails; a cancelled context is not an error.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

// SyncTrigger is the part of the engine the periodic job drives.
type SyncTrigger interface {
	Settings(ctx context.Context) (models.SyncSettings, error)
	TriggerSync(ctx context.Context) models.RunResult
}

// Prober re-checks remote reachability.
type Prober interface {
	VerifyOnline(ctx context.Context, timeout time.Duration) bool
}

// LogPruner drops old sync log entries.
type LogPruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CacheEvicter drops stale reference data.
type CacheEvicter interface {
	Evict(ctx context.Context, maxAge time.Duration) (int64, error)
}

// SettingsUpdater applies a partial settings change.
type SettingsUpdater interface {
	UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.SyncSettings, error)
}
