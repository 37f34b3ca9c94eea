// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/MKhiriev/go-field-sync/models"
)

type syncModel struct {
	spinner spinner.Model
	running bool
}

func newSyncModel() syncModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return syncModel{spinner: s}
}

func (m syncModel) View(state models.SyncState) string {
	if m.running {
		return m.spinner.View() + " " + string(state)
	}
	if state == "" {
		return string(models.SyncStateIdle)
	}
	return string(state)
}

// isRunning reports whether p belongs to a run that has not finished.
func isRunning(p models.SyncProgress) bool {
	return p.Status != "" && p.Status != models.SyncStateIdle && !p.Status.Terminal()
}
