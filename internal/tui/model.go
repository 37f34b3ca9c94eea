// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-field-sync/models"
)

const (
	refreshInterval = 2 * time.Second
	noticeTTL       = 3 * time.Second
	recentLogLimit  = 5
	maxBarWidth     = 60
)

type monitorModel struct {
	ctx       context.Context
	engine    Engine
	buildInfo models.AppBuildInfo
	copyText  func(string) error

	status   models.EngineStatus
	progress models.SyncProgress
	recent   []models.SyncLogEntry
	loaded   bool
	live     bool

	sync syncModel
	bar  progress.Model
	help help.Model

	notice   string
	errMsg   string
	showInfo bool
}

func newMonitorModel(ctx context.Context, engine Engine, buildInfo models.AppBuildInfo) monitorModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = maxBarWidth

	return monitorModel{
		ctx:       ctx,
		engine:    engine,
		buildInfo: buildInfo,
		copyText:  clipboard.WriteAll,
		sync:      newSyncModel(),
		bar:       bar,
		help:      help.New(),
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.sync.spinner.Tick, m.loadStatus(), refreshTick())
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-8, 10), maxBarWidth)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case progressMsg:
		m.live = true
		cmd := m.setProgress(models.SyncProgress(msg))
		if models.SyncProgress(msg).Status.Terminal() {
			return m, tea.Batch(cmd, m.loadStatus())
		}
		return m, cmd

	case statusLoadedMsg:
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.status = msg.status
		m.recent = msg.recent
		m.loaded = true
		if !m.live {
			return m, m.setProgress(msg.status.Progress)
		}
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.loadStatus(), refreshTick())

	case syncStartedMsg:
		if msg.result.Started {
			m.notice = "Sync started"
		} else {
			m.notice = "Sync not started: " + strings.ReplaceAll(msg.result.Reason, "_", " ")
		}
		return m, clearNoticeLater()

	case failedResetMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Retry failed items: %s", humanizeError(msg.err))
			return m, nil
		}
		m.notice = fmt.Sprintf("%d failed item(s) queued again", msg.n)
		return m, tea.Batch(m.loadStatus(), clearNoticeLater())

	case failedClearedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Clear failed items: %s", humanizeError(msg.err))
			return m, nil
		}
		m.notice = fmt.Sprintf("%d failed item(s) removed", msg.n)
		return m, tea.Batch(m.loadStatus(), clearNoticeLater())

	case clearStatusMsg:
		m.notice = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sync.spinner, cmd = m.sync.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		if b, ok := bar.(progress.Model); ok {
			m.bar = b
		}
		return m, cmd
	}

	return m, nil
}

func (m monitorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.quit) {
		return m, tea.Quit
	}

	if m.errMsg != "" {
		if key.Matches(msg, keys.enter, keys.esc) {
			m.errMsg = ""
		}
		return m, nil
	}

	if m.showInfo {
		if key.Matches(msg, keys.esc, keys.info) {
			m.showInfo = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.sync):
		return m, m.startSync()
	case key.Matches(msg, keys.retry):
		return m, m.retryFailed()
	case key.Matches(msg, keys.clear):
		return m, m.clearFailed()
	case key.Matches(msg, keys.copy):
		if err := m.copyText(statusReport(m.status, m.progress)); err != nil {
			m.errMsg = fmt.Sprintf("Copy to clipboard: %v", err)
			return m, nil
		}
		m.notice = "Status copied to clipboard"
		return m, clearNoticeLater()
	case key.Matches(msg, keys.info):
		m.showInfo = true
	case key.Matches(msg, keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *monitorModel) setProgress(p models.SyncProgress) tea.Cmd {
	m.progress = p
	m.sync.running = isRunning(p)
	return m.bar.SetPercent(p.Percent())
}

func (m monitorModel) loadStatus() tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		status, err := engine.Status(ctx)
		if err != nil {
			return statusLoadedMsg{err: err}
		}
		recent, err := engine.RecentLog(ctx, recentLogLimit)
		if err != nil {
			return statusLoadedMsg{err: err}
		}
		return statusLoadedMsg{status: status, recent: recent}
	}
}

func (m monitorModel) startSync() tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		return syncStartedMsg{result: engine.StartSync(ctx)}
	}
}

func (m monitorModel) retryFailed() tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		n, err := engine.RetryFailed(ctx)
		return failedResetMsg{n: n, err: err}
	}
}

func (m monitorModel) clearFailed() tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		n, err := engine.ClearFailed(ctx)
		return failedClearedMsg{n: n, err: err}
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func clearNoticeLater() tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func (m monitorModel) View() string {
	if m.errMsg != "" {
		return appStyle.Render(errorOverlayModel{message: m.errMsg}.View())
	}
	if m.showInfo {
		return appStyle.Render(renderBuildInfoWindow(m.buildInfo))
	}

	var b strings.Builder
	b.WriteString(renderPage(titleStyle.Render("FIELDSYNC MONITOR"), m.body(), m.help.View(keys)))
	if m.notice != "" {
		b.WriteString("\n\n  ")
		b.WriteString(noticeStyle.Render(m.notice))
	}
	return appStyle.Render(b.String())
}

func (m monitorModel) body() string {
	if !m.loaded {
		return m.sync.spinner.View() + " loading status..."
	}

	var b strings.Builder
	p := m.progress

	connection := offlineStyle.Render("○ offline")
	if m.status.Online {
		connection = onlineStyle.Render("● online")
	}
	fmt.Fprintf(&b, "Connection: %s\n", connection)
	fmt.Fprintf(&b, "State:      %s\n", m.sync.View(p.Status))
	fmt.Fprintf(&b, "\n%s\n", m.bar.View())
	fmt.Fprintf(&b, "Processed %d/%d  completed %d  failed %d  skipped %d\n",
		p.Processed(), p.Total, p.Completed, p.Failed, p.Skipped)
	if p.CurrentItem != "" {
		fmt.Fprintf(&b, "Current:    %s\n", p.CurrentItem)
	}
	if p.Error != "" {
		fmt.Fprintf(&b, "Run error:  %s\n", fitText(p.Error, 80))
	}

	q := m.status.Queue
	fmt.Fprintf(&b, "\nQueue:      %d pending, %d failed, %d total\n", q.Pending, q.Failed, q.Total)
	fmt.Fprintf(&b, "Last sync:  %s\n", formatTime(m.status.LastSyncTime))

	s := m.status.Settings
	fmt.Fprintf(&b, "Settings:   auto sync %s, batch %d, retries %d, %s\n",
		onOff(s.AutoSync), s.BatchSize, s.MaxRetries, s.ConflictStrategy)

	b.WriteString("\nRecent activity\n")
	if len(m.recent) == 0 {
		b.WriteString(helpStyle.Render("no sync activity yet"))
	}
	for i, e := range m.recent {
		if i > 0 {
			b.WriteString("\n")
		}
		line := fmt.Sprintf("%s  %-15s #%-5d %-17s %dms",
			e.CreatedAt.Local().Format("15:04:05"), e.ItemType, e.QueueItemID, e.Action, e.DurationMS)
		if e.Message != "" {
			line += "  " + e.Message
		}
		b.WriteString(fitText(line, 100))
	}

	return b.String()
}

// statusReport renders the status as plain text for the clipboard.
func statusReport(status models.EngineStatus, p models.SyncProgress) string {
	var b strings.Builder

	connection := "offline"
	if status.Online {
		connection = "online"
	}
	fmt.Fprintf(&b, "connection: %s\n", connection)
	fmt.Fprintf(&b, "state: %s\n", p.Status)
	if p.RunID != "" {
		fmt.Fprintf(&b, "run: %s\n", p.RunID)
	}
	fmt.Fprintf(&b, "progress: %d/%d (completed %d, failed %d, skipped %d)\n",
		p.Processed(), p.Total, p.Completed, p.Failed, p.Skipped)
	fmt.Fprintf(&b, "queue: pending %d, failed %d, total %d\n",
		status.Queue.Pending, status.Queue.Failed, status.Queue.Total)
	fmt.Fprintf(&b, "last sync: %s", formatTime(status.LastSyncTime))

	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
