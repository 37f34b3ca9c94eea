// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/utils"
	"github.com/MKhiriev/go-field-sync/models"
)

func (h *Handler) cachedTasks(w http.ResponseWriter, r *http.Request) {
	h.writeCached(w, r, "*Handler.cachedTasks", h.cache.Tasks)
}

func (h *Handler) cachedSchools(w http.ResponseWriter, r *http.Request) {
	h.writeCached(w, r, "*Handler.cachedSchools", h.cache.Schools)
}

func (h *Handler) writeCached(w http.ResponseWriter, r *http.Request, fn string, list func(context.Context) ([]models.CachedEntity, error)) {
	log := logger.FromRequest(r)

	entities, err := list(r.Context())
	if err != nil {
		log.Err(err).Str("func", fn).Msg("error reading cached records")
		utils.WriteError(w, "error reading cached records", statusFromError(err))
		return
	}
	if entities == nil {
		entities = []models.CachedEntity{}
	}

	utils.WriteJSON(w, entities, http.StatusOK)
}

// refreshCache pulls tasks and schools from the remote. It fails fast when
// the first refresh fails.
func (h *Handler) refreshCache(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	var result models.CacheRefreshResult
	var err error

	if result.Tasks, err = h.cache.RefreshTasks(ctx); err != nil {
		log.Err(err).Str("func", "*Handler.refreshCache").Msg("error refreshing tasks")
		utils.WriteError(w, "error refreshing tasks", statusFromError(err))
		return
	}
	if result.Schools, err = h.cache.RefreshSchools(ctx); err != nil {
		log.Err(err).Str("func", "*Handler.refreshCache").Msg("error refreshing schools")
		utils.WriteError(w, "error refreshing schools", statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}
