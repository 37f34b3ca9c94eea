// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui implements the terminal sync monitor: live progress of the
// current run, queue and connectivity state, recent sync activity and
// hotkeys to start a run or deal with failed items.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/models"
)

// Engine is the part of the sync engine the monitor drives.
type Engine interface {
	Status(ctx context.Context) (models.EngineStatus, error)
	RecentLog(ctx context.Context, limit int) ([]models.SyncLogEntry, error)
	StartSync(ctx context.Context) models.RunResult
	RetryFailed(ctx context.Context) (int64, error)
	ClearFailed(ctx context.Context) (int64, error)
	SubscribeProgress(fn service.ProgressFunc) service.SubscriptionID
	UnsubscribeProgress(id service.SubscriptionID)
}

type TUI struct {
	engine    Engine
	buildInfo models.AppBuildInfo
	logger    *logger.Logger

	options []tea.ProgramOption
}

func New(engine Engine, buildInfo models.AppBuildInfo, logger *logger.Logger) *TUI {
	return &TUI{
		engine:    engine,
		buildInfo: buildInfo,
		logger:    logger,
		options:   []tea.ProgramOption{tea.WithAltScreen()},
	}
}

// Run shows the monitor until the user quits or ctx is done.
func (t *TUI) Run(ctx context.Context) error {
	model := newMonitorModel(ctx, t.engine, t.buildInfo)
	program := tea.NewProgram(model, append(t.options, tea.WithContext(ctx))...)

	id := t.engine.SubscribeProgress(func(p models.SyncProgress) {
		program.Send(progressMsg(p))
	})
	defer t.engine.UnsubscribeProgress(id)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		t.logger.Err(err).Str("func", "TUI.Run").Msg("monitor stopped with error")
		return err
	}
	return nil
}
