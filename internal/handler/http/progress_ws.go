// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/models"
)

const (
	progressClientBuffer = 16
	wsWriteTimeout       = 5 * time.Second
)

// progressHub fans engine progress out to websocket clients. Publishing
// never blocks: a client whose buffer is full loses its oldest snapshot.
type progressHub struct {
	mu      sync.Mutex
	clients map[chan models.SyncProgress]struct{}
	closed  bool
	done    chan struct{}
	detach  func()

	logger *logger.Logger
}

func newProgressHub(logger *logger.Logger) *progressHub {
	return &progressHub{
		clients: make(map[chan models.SyncProgress]struct{}),
		done:    make(chan struct{}),
		logger:  logger,
	}
}

func (h *progressHub) attach(engine service.SyncEngine) {
	id := engine.SubscribeProgress(h.broadcast)
	h.detach = func() { engine.UnsubscribeProgress(id) }
}

func (h *progressHub) broadcast(p models.SyncProgress) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- p:
		default:
			h.logger.Debug().Str("func", "progressHub.broadcast").Msg("progress client lagging, dropping oldest snapshot")
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- p:
			default:
			}
		}
	}
}

// subscribe registers a client. ok is false once the hub is closed.
func (h *progressHub) subscribe() (updates <-chan models.SyncProgress, unsubscribe func(), ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, func() {}, false
	}

	ch := make(chan models.SyncProgress, progressClientBuffer)
	h.clients[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}, true
}

func (h *progressHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *progressHub) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.done)
	h.mu.Unlock()

	if h.detach != nil {
		h.detach()
	}
}

// streamProgress upgrades to a websocket, sends the current snapshot and
// then every published update until the client goes away.
func (h *Handler) streamProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Err(err).Str("func", "*Handler.streamProgress").Msg("websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	updates, unsubscribe, ok := h.hub.subscribe()
	if !ok {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer unsubscribe()

	ctx := conn.CloseRead(r.Context())

	if err = writeProgress(ctx, conn, h.engine.Progress()); err != nil {
		log.Debug().Err(err).Str("func", "*Handler.streamProgress").Msg("error writing progress snapshot")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.hub.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case p := <-updates:
			if err = writeProgress(ctx, conn, p); err != nil {
				log.Debug().Err(err).Str("func", "*Handler.streamProgress").Msg("progress client dropped")
				return
			}
		}
	}
}

func writeProgress(ctx context.Context, conn *websocket.Conn, p models.SyncProgress) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, p)
}
