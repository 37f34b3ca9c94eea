// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client of the remote field-operations API.
//
// The primary abstraction is [RemoteAdapter], which decouples the upload
// handlers from the transport. The package ships an HTTP/REST
// implementation built on resty ([NewHTTPRemoteAdapter]).
//
// Failures are reported through three error families so that callers can
// use [errors.Is] without knowing about HTTP:
//   - [ErrConnectivity] when the remote could not be reached at all;
//   - [ErrConflict] (as *[ConflictError]) for 409 responses, carrying the
//     record the remote already holds;
//   - [ErrRemote] (as *[RemoteError]) for every other non-2xx response.
package adapter

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-field-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteAdapter defines communication with the remote API. Every upload
// takes an idempotency key that is sent in the Idempotency-Key header.
type RemoteAdapter interface {
	// SetToken replaces the bearer token supplied by the host session.
	SetToken(token string)

	// Health probes the health endpoint once, without transport retries.
	Health(ctx context.Context) error

	// CreateEPOD posts a proof-of-delivery to POST /proof-of-delivery.
	CreateEPOD(ctx context.Context, body json.RawMessage, idempotencyKey string) (models.UploadResult, error)

	// UploadEPODPhoto posts a photo to POST /proof-of-delivery/{id}/upload-photo.
	UploadEPODPhoto(ctx context.Context, epodID string, media models.MediaUpload, idempotencyKey string) (models.UploadResult, error)

	// UploadEPODSignature posts a signature to
	// POST /proof-of-delivery/{id}/upload-signature.
	UploadEPODSignature(ctx context.Context, epodID string, media models.MediaUpload, idempotencyKey string) (models.UploadResult, error)

	// UpdateTaskStatus sends PUT /tasks/{id}/status.
	UpdateTaskStatus(ctx context.Context, taskID string, body json.RawMessage, idempotencyKey string) (models.UploadResult, error)

	// CreateAttendance posts a check-in or check-out to POST /attendance.
	CreateAttendance(ctx context.Context, body json.RawMessage, idempotencyKey string) (models.UploadResult, error)

	// FetchTasks returns the tasks assigned to the device from GET /tasks.
	FetchTasks(ctx context.Context) ([]json.RawMessage, error)

	// FetchSchools returns the reference list from GET /schools.
	FetchSchools(ctx context.Context) ([]json.RawMessage, error)
}
