// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/mock"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newTestStorages(t *testing.T) *store.Storages {
	t.Helper()

	cfg := config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "engine.db")}}
	s, err := store.NewStorages(testContext(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// fakeMonitor is a scriptable connectivity monitor. Probe results queued
// with probes are consumed first; afterwards probes report the current
// online state.
type fakeMonitor struct {
	mu        sync.Mutex
	online    bool
	probes    []bool
	probed    int
	listeners map[int]func(bool)
	nextID    int
}

func newFakeMonitor(online bool) *fakeMonitor {
	return &fakeMonitor{online: online, listeners: make(map[int]func(bool))}
}

func (m *fakeMonitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *fakeMonitor) VerifyOnline(context.Context, time.Duration) bool {
	m.mu.Lock()
	m.probed++
	result := m.online
	if len(m.probes) > 0 {
		result = m.probes[0]
		m.probes = m.probes[1:]
	}
	changed := result != m.online
	m.online = result
	m.mu.Unlock()

	if changed {
		m.emit(result)
	}
	return result
}

func (m *fakeMonitor) OnChange(fn func(bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *fakeMonitor) script(results ...bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes = append(m.probes, results...)
}

// setOnline flips the state and notifies listeners like a passive signal.
func (m *fakeMonitor) setOnline(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	m.mu.Unlock()
	if changed {
		m.emit(online)
	}
}

func (m *fakeMonitor) emit(online bool) {
	m.mu.Lock()
	fns := make([]func(bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(online)
	}
}

// harness wires the real services over a SQLite store and a mocked remote.
type harness struct {
	storages *store.Storages
	remote   *mock.MockRemoteAdapter
	monitor  *fakeMonitor
	svc      *Services
}

func newHarness(t *testing.T, online bool, settings models.SyncSettings) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	h := &harness{
		storages: newTestStorages(t),
		remote:   mock.NewMockRemoteAdapter(ctrl),
		monitor:  newFakeMonitor(online),
	}

	cfg := &config.ClientConfig{Sync: settings}
	cfg.Adapter.ProbeTimeout = time.Second
	h.svc = NewServices(h.storages, h.remote, h.monitor, cfg, logger.Nop())
	h.svc.Orchestrator.sleep = func(context.Context, time.Duration) {}
	t.Cleanup(h.svc.Engine.Close)
	return h
}

func (h *harness) enqueue(t *testing.T, itemType models.ItemType, payload any, priority int, opts models.EnqueueOptions) int64 {
	t.Helper()
	id, err := h.svc.Queue.Enqueue(testContext(), itemType, mustJSON(t, payload), priority, opts)
	require.NoError(t, err)
	return id
}

func (h *harness) queueItem(t *testing.T, id int64) models.SyncQueueItem {
	t.Helper()
	item, err := h.storages.Queue.Get(testContext(), id)
	require.NoError(t, err)
	return item
}

func manualSettings() models.SyncSettings {
	s := models.DefaultSyncSettings()
	s.AutoSync = false
	return s
}
