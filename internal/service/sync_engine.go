// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

type syncEngine struct {
	queue        SyncQueue
	orchestrator *SyncOrchestrator
	notifier     *ProgressNotifier
	settings     SettingsStore
	syncLog      store.SyncLogRepository
	monitor      Connectivity

	wg          sync.WaitGroup
	unsubscribe func()

	logger *logger.Logger
}

// EngineDeps are the collaborators of the [SyncEngine] facade.
type EngineDeps struct {
	Queue        SyncQueue
	Orchestrator *SyncOrchestrator
	Notifier     *ProgressNotifier
	Settings     SettingsStore
	SyncLog      store.SyncLogRepository
	Monitor      Connectivity
	Logger       *logger.Logger
}

// NewSyncEngine builds the facade and subscribes it to connectivity
// changes so that a run starts when the remote becomes reachable.
func NewSyncEngine(deps EngineDeps) SyncEngine {
	e := &syncEngine{
		queue:        deps.Queue,
		orchestrator: deps.Orchestrator,
		notifier:     deps.Notifier,
		settings:     deps.Settings,
		syncLog:      deps.SyncLog,
		monitor:      deps.Monitor,
		logger:       deps.Logger,
	}

	e.unsubscribe = e.monitor.OnChange(func(online bool) {
		if online {
			e.autoStart(e.logger.WithContext(context.Background()), "connectivity restored")
		}
	})
	return e
}

func (e *syncEngine) QueueForSync(ctx context.Context, itemType models.ItemType, payload json.RawMessage, priority int, opts models.EnqueueOptions) (int64, error) {
	id, err := e.queue.Enqueue(ctx, itemType, payload, priority, opts)
	if err != nil {
		return 0, err
	}
	e.autoStart(ctx, "item queued")
	return id, nil
}

// autoStart starts a background run when online, idle and auto sync is on.
func (e *syncEngine) autoStart(ctx context.Context, reason string) {
	if !e.monitor.IsOnline() || e.orchestrator.State() != models.SyncStateIdle {
		return
	}

	settings, err := e.settings.Settings(ctx)
	if err != nil || !settings.AutoSync {
		return
	}

	res := e.StartSync(ctx)
	if res.Started {
		logger.FromContext(ctx).Debug().Str("func", "syncEngine.autoStart").Str("reason", reason).
			Str("run_id", res.Progress.RunID).Msg("automatic sync started")
	}
}

func (e *syncEngine) TriggerSync(ctx context.Context) models.RunResult {
	return e.orchestrator.Run(ctx)
}

func (e *syncEngine) StartSync(ctx context.Context) models.RunResult {
	exec, res := e.orchestrator.Begin(ctx)
	if exec == nil {
		return res
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		exec()
	}()
	return res
}

func (e *syncEngine) PendingCount(ctx context.Context) (int, error) {
	return e.queue.PendingCount(ctx)
}

func (e *syncEngine) Progress() models.SyncProgress {
	return e.notifier.Snapshot()
}

func (e *syncEngine) SubscribeProgress(fn ProgressFunc) SubscriptionID {
	return e.notifier.Subscribe(fn)
}

func (e *syncEngine) UnsubscribeProgress(id SubscriptionID) {
	e.notifier.Unsubscribe(id)
}

func (e *syncEngine) Settings(ctx context.Context) (models.SyncSettings, error) {
	return e.settings.Settings(ctx)
}

func (e *syncEngine) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.SyncSettings, error) {
	settings, err := e.settings.UpdateSettings(ctx, patch)
	if err != nil {
		return settings, err
	}
	if patch.MaxRetries != nil {
		if _, err = e.queue.FailExhausted(ctx, settings.MaxRetries); err != nil {
			return settings, err
		}
	}
	return settings, nil
}

func (e *syncEngine) RetryFailed(ctx context.Context) (int64, error) {
	n, err := e.queue.ResetFailed(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 && e.monitor.IsOnline() {
		e.StartSync(ctx)
	}
	return n, nil
}

func (e *syncEngine) ClearFailed(ctx context.Context) (int64, error) {
	return e.queue.ClearFailed(ctx)
}

func (e *syncEngine) RecentLog(ctx context.Context, limit int) ([]models.SyncLogEntry, error) {
	entries, err := e.syncLog.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read sync log: %w", err)
	}
	return entries, nil
}

func (e *syncEngine) QueueItems(ctx context.Context, limit int) ([]models.SyncQueueItem, error) {
	return e.queue.List(ctx, limit)
}

func (e *syncEngine) Status(ctx context.Context) (models.EngineStatus, error) {
	stats, err := e.queue.Stats(ctx)
	if err != nil {
		return models.EngineStatus{}, err
	}
	settings, err := e.settings.Settings(ctx)
	if err != nil {
		return models.EngineStatus{}, err
	}
	last, err := e.settings.LastSyncTime(ctx)
	if err != nil {
		return models.EngineStatus{}, err
	}

	return models.EngineStatus{
		Online:       e.monitor.IsOnline(),
		Progress:     e.notifier.Snapshot(),
		Queue:        stats,
		LastSyncTime: last,
		Settings:     settings,
	}, nil
}

func (e *syncEngine) State() models.SyncState {
	return e.orchestrator.State()
}

func (e *syncEngine) Wait() {
	e.wg.Wait()
}

func (e *syncEngine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	e.wg.Wait()
}
