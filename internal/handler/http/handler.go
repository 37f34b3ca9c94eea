// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/models"
)

type Handler struct {
	engine  service.SyncEngine
	capture service.CaptureService
	cache   service.CacheService

	buildInfo models.AppBuildInfo
	hub       *progressHub

	logger *logger.Logger
}

// NewHandler builds the control API handler. The progress hub is subscribed
// to the engine until Close is called.
func NewHandler(services *service.Services, buildInfo models.AppBuildInfo, logger *logger.Logger) *Handler {
	h := &Handler{
		engine:    services.Engine,
		capture:   services.Capture,
		cache:     services.Cache,
		buildInfo: buildInfo,
		hub:       newProgressHub(logger),
		logger:    logger,
	}

	if h.engine != nil {
		h.hub.attach(h.engine)
	}

	logger.Info().Msg("http handler created")
	return h
}

// Close detaches the progress hub and disconnects websocket clients.
func (h *Handler) Close() {
	h.hub.close()
}
