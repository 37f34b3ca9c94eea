// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/utils"
	"github.com/MKhiriev/go-field-sync/models"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerDeviceID       = "X-Device-ID"
	headerRunID          = "X-Sync-Run-ID"
)

type httpRemoteAdapter struct {
	client *utils.HTTPClient
	probe  *utils.HTTPClient

	healthPath string

	mu    sync.RWMutex
	token string

	now    func() time.Time
	logger *logger.Logger
}

// NewHTTPRemoteAdapter constructs the REST implementation of [RemoteAdapter].
// Uploads go through a client with transport-level retries on network
// errors and 5xx responses; the health probe uses a separate client without
// retries and with the probe timeout.
func NewHTTPRemoteAdapter(cfg config.ClientAdapter, logger *logger.Logger) (RemoteAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	client := utils.NewHTTPClient().WithRetries(cfg.RetryCount, cfg.RetryWait, cfg.RetryMaxWait)
	client.
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Accept", "application/json")

	probe := utils.NewHTTPClient()
	probe.
		SetBaseURL(baseURL).
		SetTimeout(cfg.ProbeTimeout)

	if cfg.DeviceID != "" {
		client.SetHeader(headerDeviceID, cfg.DeviceID)
		probe.SetHeader(headerDeviceID, cfg.DeviceID)
	}

	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/health"
	}

	return &httpRemoteAdapter{
		client:     client,
		probe:      probe,
		healthPath: healthPath,
		token:      strings.TrimSpace(cfg.Token),
		now:        time.Now,
		logger:     logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpRemoteAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteAdapter) currentToken() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpRemoteAdapter) Health(ctx context.Context) error {
	resp, err := h.probe.R().SetContext(ctx).Get(h.healthPath)
	if err != nil {
		return transportError("health", err)
	}
	return mapHTTPError(resp)
}

func (h *httpRemoteAdapter) CreateEPOD(ctx context.Context, body json.RawMessage, idempotencyKey string) (models.UploadResult, error) {
	req, err := h.authedRequest(ctx, idempotencyKey)
	if err != nil {
		return models.UploadResult{}, err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(body)).
		Post("/proof-of-delivery")
	return h.uploadResult(ctx, "create epod", resp, err)
}

func (h *httpRemoteAdapter) UploadEPODPhoto(ctx context.Context, epodID string, media models.MediaUpload, idempotencyKey string) (models.UploadResult, error) {
	return h.uploadMedia(ctx, "upload photo", "/proof-of-delivery/{id}/upload-photo", epodID, media, idempotencyKey)
}

func (h *httpRemoteAdapter) UploadEPODSignature(ctx context.Context, epodID string, media models.MediaUpload, idempotencyKey string) (models.UploadResult, error) {
	return h.uploadMedia(ctx, "upload signature", "/proof-of-delivery/{id}/upload-signature", epodID, media, idempotencyKey)
}

func (h *httpRemoteAdapter) UpdateTaskStatus(ctx context.Context, taskID string, body json.RawMessage, idempotencyKey string) (models.UploadResult, error) {
	req, err := h.authedRequest(ctx, idempotencyKey)
	if err != nil {
		return models.UploadResult{}, err
	}

	resp, err := req.
		SetPathParam("id", taskID).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(body)).
		Put("/tasks/{id}/status")
	return h.uploadResult(ctx, "update task status", resp, err)
}

func (h *httpRemoteAdapter) CreateAttendance(ctx context.Context, body json.RawMessage, idempotencyKey string) (models.UploadResult, error) {
	req, err := h.authedRequest(ctx, idempotencyKey)
	if err != nil {
		return models.UploadResult{}, err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(body)).
		Post("/attendance")
	return h.uploadResult(ctx, "create attendance", resp, err)
}

func (h *httpRemoteAdapter) FetchTasks(ctx context.Context) ([]json.RawMessage, error) {
	return h.fetchList(ctx, "fetch tasks", "/tasks")
}

func (h *httpRemoteAdapter) FetchSchools(ctx context.Context) ([]json.RawMessage, error) {
	return h.fetchList(ctx, "fetch schools", "/schools")
}

func (h *httpRemoteAdapter) uploadMedia(ctx context.Context, op, path, epodID string, media models.MediaUpload, idempotencyKey string) (models.UploadResult, error) {
	req, err := h.authedRequest(ctx, idempotencyKey)
	if err != nil {
		return models.UploadResult{}, err
	}

	body, contentType, err := multipartBody(media)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("%s: build multipart body: %w", op, err)
	}

	resp, err := req.
		SetPathParam("id", epodID).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Post(path)
	return h.uploadResult(ctx, op, resp, err)
}

// authedRequest prepares an authenticated request. An expired bearer token
// is reported as unauthorized without touching the network.
func (h *httpRemoteAdapter) authedRequest(ctx context.Context, idempotencyKey string) (*resty.Request, error) {
	token := h.currentToken()
	if utils.TokenExpired(token, h.now()) {
		return nil, &RemoteError{StatusCode: http.StatusUnauthorized, Message: "bearer token expired", Err: ErrUnauthorized}
	}

	req := h.client.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	if idempotencyKey != "" {
		req.SetHeader(headerIdempotencyKey, idempotencyKey)
	}
	if runID, ok := utils.RunIDFromContext(ctx); ok {
		req.SetHeader(headerRunID, runID)
	}
	return req, nil
}

func (h *httpRemoteAdapter) uploadResult(ctx context.Context, op string, resp *resty.Response, err error) (models.UploadResult, error) {
	log := logger.FromContext(ctx)

	if err != nil {
		log.Debug().Err(err).Str("func", "httpRemoteAdapter.uploadResult").Str("op", op).Msg("remote unreachable")
		return models.UploadResult{}, transportError(op, err)
	}
	if err = mapHTTPError(resp); err != nil {
		log.Debug().Err(err).Str("func", "httpRemoteAdapter.uploadResult").Str("op", op).
			Int("status", resp.StatusCode()).Msg("remote rejected request")
		return models.UploadResult{}, err
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.UploadResult{ID: models.RemoteID(env.Data), Data: env.Data}, nil
}

func (h *httpRemoteAdapter) fetchList(ctx context.Context, op, path string) ([]json.RawMessage, error) {
	req, err := h.authedRequest(ctx, "")
	if err != nil {
		return nil, err
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, transportError(op, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}

	var items []json.RawMessage
	if err = json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("%s: %w: data is not a list: %w", op, ErrMalformedResponse, err)
	}
	return items, nil
}

// envelope mirrors [models.RemoteResponse] but tells an absent success flag
// apart from an explicit false.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(resp *resty.Response) (models.RemoteResponse, error) {
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return models.RemoteResponse{Success: true}, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.RemoteResponse{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.Success != nil && !*env.Success {
		return models.RemoteResponse{}, &RemoteError{StatusCode: resp.StatusCode(), Message: env.Message, Err: ErrRejected}
	}

	return models.RemoteResponse{Success: true, Data: env.Data, Message: env.Message}, nil
}

// multipartBody renders media as a single-part form. The body is built in
// memory so that transport retries can resend it.
func multipartBody(media models.MediaUpload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, media.FieldName, media.FileName))
	header.Set("Content-Type", media.MimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err = part.Write(media.Data); err != nil {
		return nil, "", err
	}
	if err = w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
