// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	// sync engine
	router.Group(func(r chi.Router) {
		r.Get("/api/sync/status", h.getStatus)
		r.Get("/api/sync/progress", h.getProgress)
		r.Get("/api/sync/progress/ws", h.streamProgress)
		r.Post("/api/sync/trigger", h.triggerSync)
		r.Get("/api/sync/queue", h.listQueue)
		r.Post("/api/sync/queue", h.enqueueItem)
		r.Post("/api/sync/failed/retry", h.retryFailed)
		r.Delete("/api/sync/failed", h.clearFailed)
		r.Get("/api/sync/settings", h.getSettings)
		r.Patch("/api/sync/settings", h.updateSettings)
		r.Get("/api/sync/log", h.recentLog)
	})

	// captures
	router.Group(func(r chi.Router) {
		r.Post("/api/capture/proof", h.captureProof)
		r.Post("/api/capture/attendance", h.captureAttendance)
		r.Post("/api/capture/status", h.captureStatus)
	})

	// reference cache
	router.Group(func(r chi.Router) {
		r.Get("/api/cache/tasks", h.cachedTasks)
		r.Get("/api/cache/schools", h.cachedSchools)
		r.Post("/api/cache/refresh", h.refreshCache)
	})

	router.Get("/api/version", h.getVersion)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
