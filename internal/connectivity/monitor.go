// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package connectivity tracks whether the remote API is reachable.
//
// [Monitor] keeps the last known state, which is cheap to read, and can
// verify it with an active probe of the health endpoint. Passive signals
// (from the host platform or the background poller) that report the remote
// as reachable again are re-verified before listeners hear about them.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/logger"
)

// DefaultProbeTimeout bounds one active probe when no timeout is given.
const DefaultProbeTimeout = 5 * time.Second

// Prober performs one request against the remote health endpoint.
// [adapter.RemoteAdapter] satisfies it.
type Prober interface {
	Health(ctx context.Context) error
}

// Monitor is safe for concurrent use.
type Monitor struct {
	prober  Prober
	timeout time.Duration

	mu        sync.RWMutex
	online    bool
	listeners map[uint64]func(online bool)
	nextID    uint64

	logger *logger.Logger
}

// NewMonitor returns a monitor starting in the online state given by
// initial. timeout <= 0 selects [DefaultProbeTimeout].
func NewMonitor(prober Prober, timeout time.Duration, initial bool, logger *logger.Logger) *Monitor {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Monitor{
		prober:    prober,
		timeout:   timeout,
		online:    initial,
		listeners: make(map[uint64]func(online bool)),
		logger:    logger,
	}
}

// IsOnline returns the last known state without any I/O.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// VerifyOnline probes the remote once and records the outcome. A timeout,
// transport failure or non-2xx answer counts as offline. timeout <= 0
// uses the monitor's default.
func (m *Monitor) VerifyOnline(ctx context.Context, timeout time.Duration) bool {
	online := m.probe(ctx, timeout)
	m.setState(online)
	return online
}

// SetPassive feeds a passive signal. Loss is applied at once; a signal
// that the remote is reachable again is confirmed by a probe first.
func (m *Monitor) SetPassive(ctx context.Context, online bool) {
	if !online {
		m.setState(false)
		return
	}
	if m.IsOnline() {
		return
	}
	m.VerifyOnline(ctx, 0)
}

// OnChange registers fn to be called with the new state on every
// transition and returns a function that removes it.
func (m *Monitor) OnChange(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Monitor) probe(ctx context.Context, timeout time.Duration) (online bool) {
	if m.prober == nil {
		return false
	}
	if timeout <= 0 {
		timeout = m.timeout
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Str("func", "Monitor.probe").Msg("health probe panicked")
			online = false
		}
	}()

	if err := m.prober.Health(probeCtx); err != nil {
		m.logger.Debug().Err(err).Str("func", "Monitor.probe").Msg("health probe failed")
		return false
	}
	return true
}

func (m *Monitor) setState(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]func(online bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	m.logger.Info().Bool("online", online).Msg("connectivity changed")

	for _, fn := range listeners {
		m.notify(fn, online)
	}
}

func (m *Monitor) notify(fn func(online bool), online bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Str("func", "Monitor.notify").Msg("connectivity listener panicked")
		}
	}()
	fn(online)
}
