// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/utils"
	"github.com/MKhiriev/go-field-sync/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	status, err := h.engine.Status(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getStatus").Msg("error reading engine status")
		utils.WriteError(w, "error reading engine status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.engine.Progress(), http.StatusOK)
}

// triggerSync starts a run in the background; with ?wait=true it returns
// once the run has finished. A rejected trigger answers 409 with the reason.
func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	var result models.RunResult
	if wait {
		result = h.engine.TriggerSync(r.Context())
	} else {
		result = h.engine.StartSync(r.Context())
	}

	switch {
	case !result.Started:
		log.Info().Str("func", "*Handler.triggerSync").Str("reason", result.Reason).Msg("sync trigger rejected")
		utils.WriteJSON(w, result, http.StatusConflict)
	case wait:
		utils.WriteJSON(w, result, http.StatusOK)
	default:
		utils.WriteJSON(w, result, http.StatusAccepted)
	}
}

func (h *Handler) listQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	limit, err := parseLimit(r)
	if err != nil {
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	items, err := h.engine.QueueItems(r.Context(), limit)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listQueue").Msg("error listing queue items")
		utils.WriteError(w, "error listing queue items", statusFromError(err))
		return
	}
	if items == nil {
		items = []models.SyncQueueItem{}
	}

	utils.WriteJSON(w, items, http.StatusOK)
}

func (h *Handler) enqueueItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.enqueueItem").Msg("invalid JSON was passed")
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.engine.QueueForSync(r.Context(), req.Type, req.Payload, req.Priority, req.Options())
	if err != nil {
		log.Err(err).Str("func", "*Handler.enqueueItem").Msg("error queueing item")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.EnqueueResponse{ID: id}, http.StatusCreated)
}

func (h *Handler) retryFailed(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	n, err := h.engine.RetryFailed(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.retryFailed").Msg("error resetting failed items")
		utils.WriteError(w, "error resetting failed items", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.AffectedResponse{Affected: n}, http.StatusOK)
}

func (h *Handler) clearFailed(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	n, err := h.engine.ClearFailed(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.clearFailed").Msg("error clearing failed items")
		utils.WriteError(w, "error clearing failed items", statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.AffectedResponse{Affected: n}, http.StatusOK)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	settings, err := h.engine.Settings(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getSettings").Msg("error reading sync settings")
		utils.WriteError(w, "error reading sync settings", statusFromError(err))
		return
	}

	utils.WriteJSON(w, settings, http.StatusOK)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var patch models.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Err(err).Str("func", "*Handler.updateSettings").Msg("invalid JSON was passed")
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}
	if patch.IsEmpty() {
		utils.WriteError(w, ErrEmptyPatch.Error(), http.StatusBadRequest)
		return
	}

	settings, err := h.engine.UpdateSettings(r.Context(), patch)
	if err != nil {
		log.Err(err).Str("func", "*Handler.updateSettings").Msg("error updating sync settings")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, settings, http.StatusOK)
}

func (h *Handler) recentLog(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	limit, err := parseLimit(r)
	if err != nil {
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	entries, err := h.engine.RecentLog(r.Context(), limit)
	if err != nil {
		log.Err(err).Str("func", "*Handler.recentLog").Msg("error reading sync log")
		utils.WriteError(w, "error reading sync log", statusFromError(err))
		return
	}
	if entries == nil {
		entries = []models.SyncLogEntry{}
	}

	utils.WriteJSON(w, entries, http.StatusOK)
}

// parseLimit reads ?limit=, defaulting to 50 and capping at 1000.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLimit, raw)
	}
	if limit == 0 || limit > maxListLimit {
		return maxListLimit, nil
	}
	return limit, nil
}
