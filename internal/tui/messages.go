// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/MKhiriev/go-field-sync/models"

// progressMsg carries a snapshot published by the engine.
type progressMsg models.SyncProgress

type statusLoadedMsg struct {
	status models.EngineStatus
	recent []models.SyncLogEntry
	err    error
}

type refreshTickMsg struct{}

type syncStartedMsg struct {
	result models.RunResult
}

type failedResetMsg struct {
	n   int64
	err error
}

type failedClearedMsg struct {
	n   int64
	err error
}

type clearStatusMsg struct{}
