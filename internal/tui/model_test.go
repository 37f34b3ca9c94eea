// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/models"
)

type fakeEngine struct {
	mu sync.Mutex

	status    models.EngineStatus
	statusErr error
	recent    []models.SyncLogEntry
	result    models.RunResult
	reset     int64
	cleared   int64
	failedErr error

	starts       int
	subscribed   int
	unsubscribed int
}

func (f *fakeEngine) Status(context.Context) (models.EngineStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeEngine) RecentLog(_ context.Context, limit int) ([]models.SyncLogEntry, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeEngine) StartSync(context.Context) models.RunResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return f.result
}

func (f *fakeEngine) RetryFailed(context.Context) (int64, error) { return f.reset, f.failedErr }
func (f *fakeEngine) ClearFailed(context.Context) (int64, error) { return f.cleared, f.failedErr }

func (f *fakeEngine) SubscribeProgress(service.ProgressFunc) service.SubscriptionID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed++
	return service.SubscriptionID(f.subscribed)
}

func (f *fakeEngine) UnsubscribeProgress(service.SubscriptionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed++
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testStatus() models.EngineStatus {
	last := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	return models.EngineStatus{
		Online:       true,
		Progress:     models.SyncProgress{Status: models.SyncStateCompleted, Total: 4, Completed: 4},
		Queue:        models.QueueStats{Pending: 2, Failed: 1, Total: 3},
		LastSyncTime: &last,
		Settings: models.SyncSettings{
			AutoSync:         true,
			MaxRetries:       3,
			BatchSize:        10,
			ConflictStrategy: models.StrategyServerWins,
		},
	}
}

// update feeds msg to m and, when the model returns a command, runs it once
// and feeds its message back. Tick commands are not followed.
func update(t *testing.T, m monitorModel, msg tea.Msg) (monitorModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(monitorModel)
	require.True(t, ok)
	return mm, cmd
}

func loaded(t *testing.T, engine *fakeEngine) monitorModel {
	t.Helper()
	m := newMonitorModel(context.Background(), engine, models.NewAppBuildInfo("1.4.0", "2026-05-01", "abc123"))
	msg := m.loadStatus()()
	m, _ = update(t, m, msg)
	require.True(t, m.loaded)
	return m
}

// ── Status loading ───────────────────────────────────────────────────────────

func TestMonitor_ViewBeforeStatusLoaded(t *testing.T) {
	m := newMonitorModel(context.Background(), &fakeEngine{}, models.AppBuildInfo{})
	assert.Contains(t, m.View(), "loading status")
}

func TestMonitor_StatusLoaded(t *testing.T) {
	engine := &fakeEngine{
		status: testStatus(),
		recent: []models.SyncLogEntry{
			{QueueItemID: 7, ItemType: models.ItemTypeEPOD, Action: models.SyncActionSuccess, DurationMS: 120, CreatedAt: time.Now()},
			{QueueItemID: 8, ItemType: models.ItemTypeAttendance, Action: models.SyncActionFailed, Message: "remote error 500", CreatedAt: time.Now()},
		},
	}
	m := loaded(t, engine)

	view := m.View()
	assert.Contains(t, view, "FIELDSYNC MONITOR")
	assert.Contains(t, view, "online")
	assert.Contains(t, view, "2 pending, 1 failed, 3 total")
	assert.Contains(t, view, "Processed 4/4")
	assert.Contains(t, view, "auto sync on, batch 10, retries 3, server_wins")
	assert.Contains(t, view, "#7")
	assert.Contains(t, view, "remote error 500")
	assert.Equal(t, models.SyncStateCompleted, m.progress.Status)
}

func TestMonitor_StatusLoadErrorShowsOverlay(t *testing.T) {
	engine := &fakeEngine{statusErr: fmt.Errorf("status: %w", adapter.ErrConnectivity)}
	m := newMonitorModel(context.Background(), engine, models.AppBuildInfo{})

	m, _ = update(t, m, m.loadStatus()())
	assert.Contains(t, m.View(), msgRemoteUnavailable)

	m, _ = update(t, m, keyPress("esc"))
	assert.Empty(t, m.errMsg)
}

// ── Progress ─────────────────────────────────────────────────────────────────

func TestMonitor_ProgressUpdates(t *testing.T) {
	m := loaded(t, &fakeEngine{status: testStatus()})

	m, cmd := update(t, m, progressMsg(models.SyncProgress{
		RunID:       "run-1",
		Status:      models.SyncStateSyncing,
		Total:       10,
		Completed:   2,
		Failed:      1,
		CurrentItem: "epod #12",
	}))
	require.NotNil(t, cmd)
	assert.True(t, m.sync.running)
	assert.True(t, m.live)

	view := m.View()
	assert.Contains(t, view, "Processed 3/10")
	assert.Contains(t, view, "epod #12")
	assert.Contains(t, view, string(models.SyncStateSyncing))

	// a later status poll does not override live progress
	m, _ = update(t, m, m.loadStatus()())
	assert.Equal(t, "run-1", m.progress.RunID)

	m, _ = update(t, m, progressMsg(models.SyncProgress{RunID: "run-1", Status: models.SyncStateCompletedWithErrors, Total: 10, Completed: 9, Failed: 1}))
	assert.False(t, m.sync.running)
}

// ── Hotkeys ──────────────────────────────────────────────────────────────────

func TestMonitor_SyncKey(t *testing.T) {
	tests := []struct {
		name   string
		result models.RunResult
		want   string
	}{
		{"started", models.RunResult{Started: true}, "Sync started"},
		{"already running", models.RunResult{Reason: models.ReasonAlreadyRunning}, "Sync not started: already running"},
		{"offline", models.RunResult{Reason: models.ReasonOffline}, "Sync not started: offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{status: testStatus(), result: tt.result}
			m := loaded(t, engine)

			m, cmd := update(t, m, keyPress("s"))
			require.NotNil(t, cmd)
			m, _ = update(t, m, cmd())

			assert.Equal(t, 1, engine.starts)
			assert.Contains(t, m.View(), tt.want)

			m, _ = update(t, m, clearStatusMsg{})
			assert.Empty(t, m.notice)
		})
	}
}

func TestMonitor_FailedItemKeys(t *testing.T) {
	engine := &fakeEngine{status: testStatus(), reset: 2, cleared: 3}
	m := loaded(t, engine)

	m, cmd := update(t, m, keyPress("r"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "2 failed item(s) queued again", m.notice)

	m, cmd = update(t, m, keyPress("x"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "3 failed item(s) removed", m.notice)

	engine.failedErr = errors.New("database is locked")
	m, cmd = update(t, m, keyPress("r"))
	m, _ = update(t, m, cmd())
	assert.Contains(t, m.View(), "Retry failed items: database is locked")
}

func TestMonitor_CopyStatus(t *testing.T) {
	m := loaded(t, &fakeEngine{status: testStatus()})

	var copied string
	m.copyText = func(s string) error {
		copied = s
		return nil
	}

	m, _ = update(t, m, keyPress("c"))
	assert.Equal(t, "Status copied to clipboard", m.notice)
	assert.Contains(t, copied, "connection: online")
	assert.Contains(t, copied, "queue: pending 2, failed 1, total 3")

	m.copyText = func(string) error { return errors.New("no clipboard utility") }
	m, _ = update(t, m, keyPress("c"))
	assert.Contains(t, m.View(), "Copy to clipboard: no clipboard utility")

	// keys other than enter, esc and quit are ignored under the overlay
	m, cmd := update(t, m, keyPress("s"))
	assert.Nil(t, cmd)
	m, _ = update(t, m, keyPress("enter"))
	assert.Empty(t, m.errMsg)
}

func TestMonitor_InfoWindow(t *testing.T) {
	m := loaded(t, &fakeEngine{status: testStatus()})

	m, _ = update(t, m, keyPress("i"))
	view := m.View()
	assert.Contains(t, view, "Version: 1.4.0")
	assert.Contains(t, view, "Commit: abc123")

	m, _ = update(t, m, keyPress("esc"))
	assert.False(t, m.showInfo)
}

func TestMonitor_QuitKey(t *testing.T) {
	m := loaded(t, &fakeEngine{status: testStatus()})

	_, cmd := update(t, m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func TestHumanizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"connectivity", fmt.Errorf("health: %w", adapter.ErrConnectivity), msgRemoteUnavailable},
		{"refused", errors.New("dial tcp 127.0.0.1:80: connect: connection refused"), msgRemoteUnavailable},
		{"other", errors.New("database is locked"), "database is locked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, humanizeError(tt.err))
		})
	}
}

func TestIsRunning(t *testing.T) {
	assert.False(t, isRunning(models.SyncProgress{}))
	assert.False(t, isRunning(models.SyncProgress{Status: models.SyncStateIdle}))
	assert.True(t, isRunning(models.SyncProgress{Status: models.SyncStatePreparing}))
	assert.True(t, isRunning(models.SyncProgress{Status: models.SyncStateSyncing}))
	assert.False(t, isRunning(models.SyncProgress{Status: models.SyncStateError}))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "never", formatTime(nil))
	ts := time.Date(2026, 5, 4, 9, 30, 0, 0, time.Local)
	assert.Equal(t, "2026-05-04 09:30:00", formatTime(&ts))
}

// ── TUI.Run ──────────────────────────────────────────────────────────────────

func TestTUI_RunQuitsAndUnsubscribes(t *testing.T) {
	engine := &fakeEngine{status: testStatus()}
	ui := New(engine, models.AppBuildInfo{}, logger.Nop())

	var out bytes.Buffer
	ui.options = []tea.ProgramOption{
		tea.WithInput(strings.NewReader("q")),
		tea.WithOutput(&out),
	}

	require.NoError(t, ui.Run(context.Background()))
	assert.Equal(t, 1, engine.subscribed)
	assert.Equal(t, 1, engine.unsubscribed)
}

func TestTUI_RunStopsOnContextCancel(t *testing.T) {
	engine := &fakeEngine{status: testStatus()}
	ui := New(engine, models.AppBuildInfo{}, logger.Nop())

	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	ui.options = []tea.ProgramOption{tea.WithInput(pr), tea.WithOutput(&out)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ui.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
