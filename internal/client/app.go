// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/connectivity"
	"github.com/MKhiriev/go-field-sync/internal/handler"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/server"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/workers"
	"github.com/MKhiriev/go-field-sync/models"
)

type App struct {
	cfg       *config.ClientConfig
	buildInfo models.AppBuildInfo

	storages *store.Storages
	remote   adapter.RemoteAdapter
	monitor  *connectivity.Monitor
	services *service.Services
	handlers *handler.Handlers

	logger *logger.Logger
}

var _ Client = (*App)(nil)

// NewApp wires the application. The monitor starts offline; the first
// connectivity probe decides the real state.
func NewApp(ctx context.Context, cfg *config.ClientConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) (*App, error) {
	remote, err := adapter.NewHTTPRemoteAdapter(cfg.Adapter, logger)
	if err != nil {
		return nil, fmt.Errorf("create remote adapter: %w", err)
	}

	storages, err := store.NewStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	return newApp(ctx, cfg, buildInfo, storages, remote, logger)
}

func newApp(ctx context.Context, cfg *config.ClientConfig, buildInfo models.AppBuildInfo, storages *store.Storages, remote adapter.RemoteAdapter, logger *logger.Logger) (*App, error) {
	monitor := connectivity.NewMonitor(remote, cfg.Adapter.ProbeTimeout, false, logger)
	services := service.NewServices(storages, remote, monitor, cfg, logger)

	if err := services.Settings.EnsureDefaults(ctx); err != nil {
		services.Engine.Close()
		_ = storages.Close()
		return nil, fmt.Errorf("init sync settings: %w", err)
	}

	app := &App{
		cfg:       cfg,
		buildInfo: buildInfo,
		storages:  storages,
		remote:    remote,
		monitor:   monitor,
		services:  services,
		logger:    logger,
	}

	if cfg.Server.HTTPAddress != "" {
		handlers, err := handler.NewHandlers(services, cfg.Server, buildInfo, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("create handlers: %w", err)
		}
		app.handlers = handlers
	}

	logger.Info().Str("func", "client.NewApp").Str("dialect", storages.Dialect()).Msg("application wired")
	return app, nil
}

func (a *App) Services() *service.Services { return a.services }

func (a *App) Monitor() *connectivity.Monitor { return a.monitor }

// Workers builds the worker group: periodic sync, connectivity poller,
// maintenance, and, when configured, the settings watcher and the control
// API server. extra workers run alongside them.
func (a *App) Workers(extra ...workers.Worker) (*workers.Workers, error) {
	w := a.cfg.Workers

	list := []workers.Worker{
		workers.NewConnectivityJob(a.monitor, w.ConnectivityInterval, a.cfg.Adapter.ProbeTimeout, a.logger),
		workers.NewSyncJob(a.services.Engine, w.SyncInterval, a.logger),
		workers.NewMaintenanceJob(a.storages.SyncLog, a.services.Cache, workers.MaintenanceConfig{
			Interval:       w.MaintenanceInterval,
			LogRetention:   w.LogRetention,
			CacheRetention: w.CacheRetention,
		}, a.logger),
	}

	if w.SettingsFile != "" {
		list = append(list, workers.NewSettingsWatcher(w.SettingsFile, a.services.Engine, a.logger))
	}

	if a.handlers != nil {
		srv, err := server.NewServer(a.handlers, a.cfg.Server, a.logger)
		if err != nil {
			return nil, fmt.Errorf("create server: %w", err)
		}
		list = append(list, srv)
	}

	return workers.NewWorkers(a.logger, append(list, extra...)...), nil
}

func (a *App) Run(ctx context.Context) error {
	group, err := a.Workers()
	if err != nil {
		return err
	}
	return group.Run(ctx)
}

// SyncNow probes the remote, lets a run started by the probe finish and
// then runs one more pass, so every item eligible now is attempted.
func (a *App) SyncNow(ctx context.Context) (models.RunResult, error) {
	engine := a.services.Engine

	if !a.monitor.VerifyOnline(ctx, a.cfg.Adapter.ProbeTimeout) {
		return models.RunResult{Reason: models.ReasonOffline, Progress: engine.Progress()}, ErrOffline
	}
	engine.Wait()

	result := engine.TriggerSync(ctx)
	if !result.Started && result.Reason == models.ReasonAlreadyRunning {
		engine.Wait()
		result.Progress = engine.Progress()
	}
	return result, nil
}

// Close stops the engine, closes open progress streams and the store.
func (a *App) Close() error {
	a.services.Engine.Close()
	a.handlers.Close()

	if err := a.storages.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
