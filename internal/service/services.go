// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/validators"
)

// Services wires the sync engine and the services around it.
type Services struct {
	Queue        SyncQueue
	Settings     SettingsStore
	Notifier     *ProgressNotifier
	Handlers     *UploadHandlers
	Orchestrator *SyncOrchestrator
	Engine       SyncEngine
	Capture      CaptureService
	Cache        CacheService
}

func NewServices(storages *store.Storages, remote adapter.RemoteAdapter, monitor Connectivity, cfg *config.ClientConfig, logger *logger.Logger) *Services {
	queue := NewSyncQueue(storages.Queue, logger)
	settings := NewSettingsStore(storages.Meta, cfg.Sync, logger)
	notifier := NewProgressNotifier(logger)

	handlers := NewDefaultUploadHandlers(HandlerDeps{
		Remote:    remote,
		Tables:    storages.Tables,
		Media:     storages.Media,
		Queue:     queue,
		Validator: validators.NewPayloadValidator(),
		Logger:    logger,
	})

	orchestrator := NewSyncOrchestrator(OrchestratorDeps{
		Queue:        queue,
		Handlers:     handlers,
		Monitor:      monitor,
		Settings:     settings,
		SyncLog:      storages.SyncLog,
		Notifier:     notifier,
		ProbeTimeout: cfg.Adapter.ProbeTimeout,
		Logger:       logger,
	})

	engine := NewSyncEngine(EngineDeps{
		Queue:        queue,
		Orchestrator: orchestrator,
		Notifier:     notifier,
		Settings:     settings,
		SyncLog:      storages.SyncLog,
		Monitor:      monitor,
		Logger:       logger,
	})

	return &Services{
		Queue:        queue,
		Settings:     settings,
		Notifier:     notifier,
		Handlers:     handlers,
		Orchestrator: orchestrator,
		Engine:       engine,
		Capture:      NewCaptureService(storages.Tables, storages.Media, engine, logger),
		Cache:        NewCacheService(remote, storages.Tables, logger),
	}
}
