// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/utils"
	"github.com/MKhiriev/go-field-sync/models"
)

// maxCaptureBody bounds a capture request: a photo of up to 5 MB plus a
// signature, base64 encoded.
const maxCaptureBody = 10 << 20

func (h *Handler) captureProof(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var capture models.ProofCapture
	if err := decodeCapture(w, r, &capture); err != nil {
		log.Err(err).Str("func", "*Handler.captureProof").Msg("invalid JSON was passed")
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.capture.CaptureProof(r.Context(), capture)
	if err != nil {
		log.Err(err).Str("func", "*Handler.captureProof").Msg("error capturing proof of delivery")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, receipt, http.StatusCreated)
}

func (h *Handler) captureAttendance(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var attendance models.AttendancePayload
	if err := decodeCapture(w, r, &attendance); err != nil {
		log.Err(err).Str("func", "*Handler.captureAttendance").Msg("invalid JSON was passed")
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.capture.CaptureAttendance(r.Context(), attendance)
	if err != nil {
		log.Err(err).Str("func", "*Handler.captureAttendance").Msg("error capturing attendance")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, receipt, http.StatusCreated)
}

func (h *Handler) captureStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var update models.StatusUpdatePayload
	if err := decodeCapture(w, r, &update); err != nil {
		log.Err(err).Str("func", "*Handler.captureStatus").Msg("invalid JSON was passed")
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.capture.UpdateTaskStatus(r.Context(), update)
	if err != nil {
		log.Err(err).Str("func", "*Handler.captureStatus").Msg("error capturing task status")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, receipt, http.StatusCreated)
}

func decodeCapture(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCaptureBody)).Decode(v)
}
