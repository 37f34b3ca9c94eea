// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/handler"
	"github.com/MKhiriev/go-field-sync/internal/logger"
)

type httpServer struct {
	server   *http.Server
	handlers *handler.Handlers

	shutdownTimeout time.Duration

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}

	logger *logger.Logger
}

func newHTTPServer(handlers *handler.Handlers, cfg config.ClientServer, logger *logger.Logger) *httpServer {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &httpServer{
		server: &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           handlers.HTTP.Init(),
			ReadHeaderTimeout: timeout,
		},
		handlers:        handlers,
		shutdownTimeout: timeout,
		ready:           make(chan struct{}),
		logger:          logger,
	}
}

func (h *httpServer) Name() string { return "control-api" }

func (h *httpServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrListen, h.server.Addr, err)
	}

	h.mu.Lock()
	h.addr = ln.Addr()
	h.mu.Unlock()
	close(h.ready)

	h.logger.Info().Str("func", "httpServer.Run").Str("addr", ln.Addr().String()).Msg("Launching HTTP server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- h.server.Serve(ln)
	}()

	select {
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	return h.shutdown()
}

// shutdown closes progress streams, which Shutdown does not track once
// hijacked, and then drains in-flight requests.
func (h *httpServer) shutdown() error {
	h.handlers.Close()

	ctx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error().Err(err).Str("func", "httpServer.shutdown").Msg("HTTP server Shutdown")
		return fmt.Errorf("http server shutdown: %w", err)
	}

	h.logger.Info().Msg("server Shutdown gracefully")
	return nil
}

// Addr returns the bound address once the server is listening.
func (h *httpServer) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addr
}
