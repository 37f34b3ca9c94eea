// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/utils"
	"github.com/MKhiriev/go-field-sync/internal/validators"
	"github.com/MKhiriev/go-field-sync/models"
)

const (
	msgRemoteUnreachable = "remote unreachable"
	msgConnectivityLost  = "connectivity lost"
)

type itemOutcome int

const (
	outcomeCompleted itemOutcome = iota
	outcomeFailed
	outcomeSkipped
)

// SyncOrchestrator drives one sync run at a time: it gates on
// connectivity, replays the queue batch by batch through the upload
// handlers and publishes progress after every item.
type SyncOrchestrator struct {
	queue    SyncQueue
	handlers *UploadHandlers
	monitor  Connectivity
	settings SettingsStore
	syncLog  store.SyncLogRepository
	notifier *ProgressNotifier

	probeTimeout time.Duration
	ids          *utils.UUIDGenerator
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration)

	running atomic.Bool

	mu    sync.RWMutex
	state models.SyncState

	logger *logger.Logger
}

// OrchestratorDeps are the collaborators of [SyncOrchestrator].
type OrchestratorDeps struct {
	Queue        SyncQueue
	Handlers     *UploadHandlers
	Monitor      Connectivity
	Settings     SettingsStore
	SyncLog      store.SyncLogRepository
	Notifier     *ProgressNotifier
	ProbeTimeout time.Duration
	Logger       *logger.Logger
}

func NewSyncOrchestrator(deps OrchestratorDeps) *SyncOrchestrator {
	return &SyncOrchestrator{
		queue:        deps.Queue,
		handlers:     deps.Handlers,
		monitor:      deps.Monitor,
		settings:     deps.Settings,
		syncLog:      deps.SyncLog,
		notifier:     deps.Notifier,
		probeTimeout: deps.ProbeTimeout,
		ids:          utils.NewUUIDGenerator(),
		now:          time.Now,
		sleep:        sleepContext,
		state:        models.SyncStateIdle,
		logger:       deps.Logger,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (o *SyncOrchestrator) State() models.SyncState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *SyncOrchestrator) setState(s models.SyncState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run performs a sync run and returns its final result. ctx only supplies
// values: the run is not cancelled with it.
func (o *SyncOrchestrator) Run(ctx context.Context) models.RunResult {
	exec, res := o.Begin(ctx)
	if exec == nil {
		return res
	}
	return exec()
}

// Begin claims the orchestrator for a run. When the run may not start
// (another run is active or the device is offline) exec is nil and res
// carries the reason; nothing is mutated in that case. Otherwise the
// caller must invoke exec exactly once.
func (o *SyncOrchestrator) Begin(ctx context.Context) (exec func() models.RunResult, res models.RunResult) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, models.RunResult{Reason: models.ReasonAlreadyRunning, Progress: o.notifier.Snapshot()}
	}
	if !o.monitor.IsOnline() {
		o.running.Store(false)
		return nil, models.RunResult{Reason: models.ReasonOffline, Progress: o.notifier.Snapshot()}
	}

	runID := o.ids.Generate()
	started := o.now()
	progress := models.SyncProgress{RunID: runID, Status: models.SyncStatePreparing, StartedAt: &started}
	o.setState(models.SyncStatePreparing)

	runCtx := context.WithoutCancel(ctx)
	exec = func() models.RunResult {
		defer func() {
			o.setState(models.SyncStateIdle)
			o.running.Store(false)
		}()
		return o.execute(runCtx, progress)
	}
	return exec, models.RunResult{Started: true, Progress: progress}
}

func (o *SyncOrchestrator) execute(ctx context.Context, p models.SyncProgress) models.RunResult {
	log := o.logger.WithRun(p.RunID)
	ctx = log.WithContext(utils.WithRunID(ctx, p.RunID))

	log.Info().Str("func", "SyncOrchestrator.execute").Msg("sync run started")
	o.notifier.Publish(p)

	if !o.monitor.VerifyOnline(ctx, o.probeTimeout) {
		return o.finish(ctx, p, models.SyncStateError, msgRemoteUnreachable)
	}

	settings, err := o.settings.Settings(ctx)
	if err != nil {
		log.Warn().Err(err).Str("func", "SyncOrchestrator.execute").Msg("using default sync settings")
	}
	settings = settings.Normalize()

	batches, err := o.queue.NextBatch(ctx, settings.MaxRetries, settings.BatchSize)
	if err != nil {
		log.Err(err).Str("func", "SyncOrchestrator.execute").Msg("failed to read the queue")
		return o.finish(ctx, p, models.SyncStateError, err.Error())
	}
	for _, batch := range batches {
		p.Total += len(batch)
	}
	if p.Total == 0 {
		return o.finish(ctx, p, models.SyncStateCompleted, "")
	}

	p.Status = models.SyncStateSyncing
	o.setState(models.SyncStateSyncing)
	o.notifier.Publish(p)

	for i, batch := range batches {
		if i > 0 {
			o.sleep(ctx, settings.BatchDelay())
			if !o.monitor.VerifyOnline(ctx, o.probeTimeout) {
				log.Warn().Str("func", "SyncOrchestrator.execute").Int("batch", i).Msg("connectivity lost, aborting run")
				return o.finish(ctx, p, models.SyncStateError, msgConnectivityLost)
			}
		}

		for _, item := range batch {
			p.CurrentItem = fmt.Sprintf("%s #%d", item.Type, item.ID)
			o.notifier.Publish(p)

			switch o.process(ctx, item, settings) {
			case outcomeCompleted:
				p.Completed++
			case outcomeFailed:
				p.Failed++
			case outcomeSkipped:
				p.Skipped++
			}
			o.notifier.Publish(p)
		}
	}

	status := models.SyncStateCompleted
	if p.Failed > 0 {
		status = models.SyncStateCompletedWithErrors
	}
	return o.finish(ctx, p, status, "")
}

func (o *SyncOrchestrator) finish(ctx context.Context, p models.SyncProgress, status models.SyncState, errMsg string) models.RunResult {
	log := logger.FromContext(ctx)

	finished := o.now()
	p.Status = status
	p.CurrentItem = ""
	p.Error = errMsg
	p.FinishedAt = &finished

	if status != models.SyncStateError {
		if err := o.settings.SetLastSyncTime(ctx, finished); err != nil {
			log.Err(err).Str("func", "SyncOrchestrator.finish").Msg("failed to store last sync time")
		}
	}

	o.setState(status)
	o.notifier.Publish(p)

	log.Info().Str("func", "SyncOrchestrator.finish").Str("status", string(status)).
		Int("total", p.Total).Int("completed", p.Completed).Int("failed", p.Failed).Int("skipped", p.Skipped).
		Str("error", errMsg).Msg("sync run finished")
	return models.RunResult{Started: true, Progress: p}
}

// process replays one item and settles its queue state. Handler failures
// never escape this boundary.
func (o *SyncOrchestrator) process(ctx context.Context, item models.SyncQueueItem, settings models.SyncSettings) itemOutcome {
	log := logger.FromContext(ctx).With().Int64("item_id", item.ID).Str("type", string(item.Type)).Logger()

	// an earlier proof in this run may have supplied the server id
	if item.Type.DependsOnEPOD() && item.PrerequisiteID == "" {
		if fresh, err := o.queue.Get(ctx, item.ID); err == nil {
			item = fresh
		}
	}

	start := o.now()
	res, err := o.handle(ctx, item, settings.ConflictStrategy)
	entry := models.SyncLogEntry{
		QueueItemID: item.ID,
		ItemType:    item.Type,
		DurationMS:  o.now().Sub(start).Milliseconds(),
		PayloadSize: len(item.Payload),
	}

	var outcome itemOutcome
	var settleErr error

	switch {
	case err == nil:
		entry.Action, entry.Message = res.Action, res.Message
		if entry.Action == "" {
			entry.Action = models.SyncActionSuccess
		}
		outcome = outcomeCompleted
		if settleErr = o.queue.RecordSuccess(ctx, item); settleErr != nil {
			entry.Action, entry.Message = models.SyncActionError, settleErr.Error()
			outcome = outcomeFailed
		}

	case errors.Is(err, validators.ErrMissingPrerequisite):
		entry.Action, entry.Message = models.SyncActionDeferred, err.Error()
		outcome = outcomeSkipped
		settleErr = o.queue.RecordDeferred(ctx, item, err.Error())

	case errors.Is(err, ErrUnknownType):
		log.Error().Err(err).Str("func", "SyncOrchestrator.process").Msg("no upload handler for queued item")
		entry.Action, entry.Message = models.SyncActionError, err.Error()
		outcome = outcomeFailed
		settleErr = o.queue.Annotate(ctx, item, err.Error())

	case errors.Is(err, validators.ErrValidation):
		entry.Action, entry.Message = models.SyncActionFailed, err.Error()
		outcome = outcomeFailed
		settleErr = o.queue.DeadLetter(ctx, item, err, settings.MaxRetries)
		if settleErr == nil {
			o.handlers.Abandon(ctx, item)
		}

	case errors.Is(err, adapter.ErrConnectivity):
		entry.Action, entry.Message = models.SyncActionDeferred, err.Error()
		outcome = outcomeSkipped
		settleErr = o.queue.RecordDeferred(ctx, item, err.Error())

	default:
		entry.Action, entry.Message = models.SyncActionFailed, err.Error()
		outcome = outcomeFailed
		settleErr = o.queue.RecordFailure(ctx, item, err, settings.MaxRetries)
		if settleErr == nil && item.RetryCount+1 >= settings.MaxRetries {
			o.handlers.Abandon(ctx, item)
		}
	}

	if settleErr != nil {
		log.Err(settleErr).Str("func", "SyncOrchestrator.process").Msg("failed to settle queue item")
	}
	if err != nil {
		log.Debug().Err(err).Str("func", "SyncOrchestrator.process").Str("action", string(entry.Action)).Msg("item not uploaded")
	}

	o.appendLog(ctx, entry)
	return outcome
}

func (o *SyncOrchestrator) handle(ctx context.Context, item models.SyncQueueItem, strategy models.ConflictStrategy) (res HandlerResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("upload handler for %s panicked: %v", item.Type, r)
		}
	}()
	return o.handlers.Handle(ctx, item, strategy)
}

// appendLog writes the sync log entry. Failures are logged and dropped.
func (o *SyncOrchestrator) appendLog(ctx context.Context, entry models.SyncLogEntry) {
	if runID, ok := utils.RunIDFromContext(ctx); ok {
		entry.RunID = runID
	}
	entry.CreatedAt = o.now()

	if _, err := o.syncLog.Append(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("func", "SyncOrchestrator.appendLog").Msg("failed to write sync log")
	}
}
