// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"sync"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

// SubscriptionID identifies a progress subscriber.
type SubscriptionID uint64

// ProgressFunc receives a copy of every published snapshot.
type ProgressFunc func(models.SyncProgress)

// ProgressNotifier fans progress snapshots out to subscribers. Delivery is
// synchronous; a panicking subscriber is recovered and the others still
// receive the snapshot.
type ProgressNotifier struct {
	mu     sync.RWMutex
	subs   map[SubscriptionID]ProgressFunc
	nextID SubscriptionID
	latest models.SyncProgress

	logger *logger.Logger
}

func NewProgressNotifier(logger *logger.Logger) *ProgressNotifier {
	return &ProgressNotifier{
		subs:   make(map[SubscriptionID]ProgressFunc),
		latest: models.SyncProgress{Status: models.SyncStateIdle},
		logger: logger,
	}
}

func (n *ProgressNotifier) Subscribe(fn ProgressFunc) SubscriptionID {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.subs[n.nextID] = fn
	return n.nextID
}

func (n *ProgressNotifier) Unsubscribe(id SubscriptionID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}

func (n *ProgressNotifier) Publish(p models.SyncProgress) {
	n.mu.Lock()
	n.latest = copyProgress(p)
	subs := make([]ProgressFunc, 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		n.deliver(fn, copyProgress(p))
	}
}

// Snapshot returns a copy of the last published progress.
func (n *ProgressNotifier) Snapshot() models.SyncProgress {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return copyProgress(n.latest)
}

func (n *ProgressNotifier) deliver(fn ProgressFunc, p models.SyncProgress) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error().Interface("panic", r).Str("func", "ProgressNotifier.deliver").
				Msg("progress subscriber panicked")
		}
	}()
	fn(p)
}

func copyProgress(p models.SyncProgress) models.SyncProgress {
	if p.StartedAt != nil {
		t := *p.StartedAt
		p.StartedAt = &t
	}
	if p.FinishedAt != nil {
		t := *p.FinishedAt
		p.FinishedAt = &t
	}
	return p
}
