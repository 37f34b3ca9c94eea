// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/validators"
)

// errorStatusMap is checked in order; the first match wins.
var errorStatusMap = []struct {
	err    error
	status int
}{
	{ErrInvalidJSON, http.StatusBadRequest},
	{ErrInvalidLimit, http.StatusBadRequest},
	{ErrEmptyPatch, http.StatusBadRequest},

	{service.ErrInvalidSettings, http.StatusBadRequest},
	{service.ErrInvalidPayload, http.StatusBadRequest},
	{service.ErrUnknownType, http.StatusBadRequest},
	{service.ErrUnknownStrategy, http.StatusBadRequest},
	{validators.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
	{validators.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
	{validators.ErrValidation, http.StatusBadRequest},

	{adapter.ErrConnectivity, http.StatusServiceUnavailable},
	{adapter.ErrUnauthorized, http.StatusBadGateway},
	{adapter.ErrRemote, http.StatusBadGateway},

	{store.ErrNotFound, http.StatusNotFound},
	{store.ErrStorage, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, m := range errorStatusMap {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}
