// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-field-sync/internal/adapter"
	"github.com/MKhiriev/go-field-sync/internal/service"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/internal/validators"
	"github.com/MKhiriev/go-field-sync/models"
)

func serve(t *testing.T, h *Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// ── NewHandler ───────────────────────────────────────────────────────────────

func TestNewHandler_SubscribesAndCloseDetaches(t *testing.T) {
	d := newTestDeps()
	h := d.handler()

	require.NotNil(t, d.engine.subscriber)

	h.Close()
	h.Close()
	assert.True(t, d.engine.unsubbed)
}

// ── Routes ───────────────────────────────────────────────────────────────────

func TestInit_RegistersAllRoutes(t *testing.T) {
	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/sync/status"},
		{http.MethodGet, "/api/sync/progress"},
		{http.MethodPost, "/api/sync/trigger"},
		{http.MethodGet, "/api/sync/queue"},
		{http.MethodPost, "/api/sync/failed/retry"},
		{http.MethodDelete, "/api/sync/failed"},
		{http.MethodGet, "/api/sync/settings"},
		{http.MethodGet, "/api/sync/log"},
		{http.MethodGet, "/api/cache/tasks"},
		{http.MethodGet, "/api/cache/schools"},
		{http.MethodPost, "/api/cache/refresh"},
		{http.MethodGet, "/api/version"},
	}

	h := newTestDeps().handler()
	for _, tc := range routes {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := serve(t, h, tc.method, tc.path, "")
			assert.NotEqual(t, http.StatusNotFound, rec.Code)
			assert.NotEqual(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

func TestInit_UnknownRouteAndWrongMethod(t *testing.T) {
	h := newTestDeps().handler()

	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/api/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodPut, "/api/sync/status", "").Code)
}

func TestInit_SetsTraceID(t *testing.T) {
	rec := serve(t, newTestDeps().handler(), http.MethodGet, "/api/version", "")
	assert.NotEmpty(t, rec.Header().Get(traceIDHeader))
}

// ── Status / progress / version ──────────────────────────────────────────────

func TestGetStatus(t *testing.T) {
	d := newTestDeps()
	d.engine.status = models.EngineStatus{
		Online:   true,
		Queue:    models.QueueStats{Pending: 2, Failed: 1, Total: 3},
		Settings: models.DefaultSyncSettings(),
	}

	rec := serve(t, d.handler(), http.MethodGet, "/api/sync/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decodeBody[models.EngineStatus](t, rec)
	assert.True(t, got.Online)
	assert.Equal(t, 3, got.Queue.Total)

	d.engine.err = &store.StorageError{Op: "stats", Table: "sync_queue", Err: fmt.Errorf("disk")}
	rec = serve(t, d.handler(), http.MethodGet, "/api/sync/status", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetProgress(t *testing.T) {
	d := newTestDeps()
	d.engine.progress = models.SyncProgress{Status: models.SyncStateSyncing, Total: 4, Completed: 1}

	rec := serve(t, d.handler(), http.MethodGet, "/api/sync/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[models.SyncProgress](t, rec)
	assert.Equal(t, models.SyncStateSyncing, got.Status)
	assert.Equal(t, 4, got.Total)
}

func TestGetVersion(t *testing.T) {
	rec := serve(t, newTestDeps().handler(), http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[models.AppBuildInfo](t, rec)
	assert.Equal(t, "1.4.0", got.Version)
	assert.Equal(t, "abc123", got.Commit)
}

// ── Trigger ──────────────────────────────────────────────────────────────────

func TestTriggerSync(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		result      models.RunResult
		wantStatus  int
		wantStarted int
		wantTrigger int
	}{
		{
			name:        "background run accepted",
			result:      models.RunResult{Started: true},
			wantStatus:  http.StatusAccepted,
			wantStarted: 1,
		},
		{
			name:        "wait for run",
			query:       "?wait=true",
			result:      models.RunResult{Started: true, Progress: models.SyncProgress{Status: models.SyncStateCompleted}},
			wantStatus:  http.StatusOK,
			wantTrigger: 1,
		},
		{
			name:        "already running",
			result:      models.RunResult{Reason: models.ReasonAlreadyRunning},
			wantStatus:  http.StatusConflict,
			wantStarted: 1,
		},
		{
			name:        "offline",
			query:       "?wait=1",
			result:      models.RunResult{Reason: models.ReasonOffline},
			wantStatus:  http.StatusConflict,
			wantTrigger: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.engine.result = tt.result

			rec := serve(t, d.handler(), http.MethodPost, "/api/sync/trigger"+tt.query, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStarted, d.engine.started)
			assert.Equal(t, tt.wantTrigger, d.engine.triggered)

			got := decodeBody[models.RunResult](t, rec)
			assert.Equal(t, tt.result.Reason, got.Reason)
		})
	}
}

// ── Queue ────────────────────────────────────────────────────────────────────

func TestListQueue(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
	}{
		{"default limit", "", http.StatusOK, defaultListLimit},
		{"explicit limit", "?limit=5", http.StatusOK, 5},
		{"zero means max", "?limit=0", http.StatusOK, maxListLimit},
		{"capped", "?limit=5000", http.StatusOK, maxListLimit},
		{"negative", "?limit=-1", http.StatusBadRequest, 0},
		{"not a number", "?limit=ten", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			rec := serve(t, d.handler(), http.MethodGet, "/api/sync/queue"+tt.query, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLimit, d.engine.lastLimit)
		})
	}
}

func TestListQueue_EmptyIsArray(t *testing.T) {
	rec := serve(t, newTestDeps().handler(), http.MethodGet, "/api/sync/queue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestEnqueueItem(t *testing.T) {
	d := newTestDeps()

	rec := serve(t, d.handler(), http.MethodPost, "/api/sync/queue",
		`{"type":"status_update","payload":{"task_id":"T-1","status":"completed"},"priority":1,"correlation_id":"T-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(42), decodeBody[models.EnqueueResponse](t, rec).ID)

	require.Len(t, d.engine.enqueued, 1)
	call := d.engine.enqueued[0]
	assert.Equal(t, models.ItemTypeStatusUpdate, call.itemType)
	assert.Equal(t, 1, call.priority)
	assert.Equal(t, "T-1", call.opts.CorrelationID)
	assert.JSONEq(t, `{"task_id":"T-1","status":"completed"}`, string(call.payload))
}

func TestEnqueueItem_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"bad json", `{"type":`, nil, http.StatusBadRequest},
		{"unknown type", `{"type":"video","payload":{}}`, &service.UnknownTypeError{Type: "video"}, http.StatusBadRequest},
		{"invalid payload", `{"type":"epod"}`, fmt.Errorf("enqueue: %w", service.ErrInvalidPayload), http.StatusBadRequest},
		{"storage", `{"type":"epod","payload":{}}`, &store.StorageError{Op: "insert", Err: fmt.Errorf("x")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.engine.err = tt.err

			rec := serve(t, d.handler(), http.MethodPost, "/api/sync/queue", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestRetryAndClearFailed(t *testing.T) {
	d := newTestDeps()
	d.engine.affected = 3

	rec := serve(t, d.handler(), http.MethodPost, "/api/sync/failed/retry", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), decodeBody[models.AffectedResponse](t, rec).Affected)

	rec = serve(t, d.handler(), http.MethodDelete, "/api/sync/failed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"affected":3}`, rec.Body.String())
}

// ── Settings ─────────────────────────────────────────────────────────────────

func TestSettings(t *testing.T) {
	d := newTestDeps()

	rec := serve(t, d.handler(), http.MethodGet, "/api/sync/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.DefaultSyncSettings(), decodeBody[models.SyncSettings](t, rec))

	rec = serve(t, d.handler(), http.MethodPatch, "/api/sync/settings", `{"batchSize":25,"autoSync":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[models.SyncSettings](t, rec)
	assert.Equal(t, 25, got.BatchSize)
	assert.False(t, got.AutoSync)
	require.Len(t, d.engine.patches, 1)
	require.NotNil(t, d.engine.patches[0].BatchSize)
}

func TestUpdateSettings_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"bad json", `not json`, nil, http.StatusBadRequest},
		{"empty patch", `{}`, nil, http.StatusBadRequest},
		{"rejected", `{"maxRetries":-1}`, fmt.Errorf("%w: max retries must be positive", service.ErrInvalidSettings), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.engine.err = tt.err

			rec := serve(t, d.handler(), http.MethodPatch, "/api/sync/settings", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

// ── Log ──────────────────────────────────────────────────────────────────────

func TestRecentLog(t *testing.T) {
	d := newTestDeps()
	d.engine.log = []models.SyncLogEntry{{ID: 1, RunID: "r", Action: models.SyncActionSuccess}}

	rec := serve(t, d.handler(), http.MethodGet, "/api/sync/log?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, d.engine.lastLimit)

	got := decodeBody[[]models.SyncLogEntry](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, models.SyncActionSuccess, got[0].Action)
}

// ── Capture ──────────────────────────────────────────────────────────────────

func TestCaptureEndpoints(t *testing.T) {
	d := newTestDeps()
	d.capture.receipt = models.CaptureReceipt{LocalID: 9, QueueIDs: []int64{1, 2}}
	h := d.handler()

	rec := serve(t, h, http.MethodPost, "/api/capture/proof",
		`{"proof":{"task_id":"T-1","recipient_name":"Ana Lima"},"signature":{"file_name":"sig.png","data":"iVBORw=="}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(9), decodeBody[models.CaptureReceipt](t, rec).LocalID)
	require.Len(t, d.capture.proofs, 1)
	assert.Equal(t, "T-1", d.capture.proofs[0].Proof.TaskID)
	require.NotNil(t, d.capture.proofs[0].Signature)
	assert.NotEmpty(t, d.capture.proofs[0].Signature.Data)

	rec = serve(t, h, http.MethodPost, "/api/capture/attendance",
		`{"kind":"check_in","school_id":"S-1","validation":{"isValid":true,"method":"wifi"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, d.capture.attendance, 1)
	assert.True(t, d.capture.attendance[0].Validation.IsValid)

	rec = serve(t, h, http.MethodPost, "/api/capture/status", `{"task_id":"T-1","status":"completed"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, d.capture.statuses, 1)
}

func TestCaptureEndpoints_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		err        error
		wantStatus int
	}{
		{"malformed body", "/api/capture/proof", `{`, nil, http.StatusBadRequest},
		{"invalid proof", "/api/capture/proof", `{"proof":{}}`, validators.ErrInvalidTaskID, http.StatusBadRequest},
		{"photo too large", "/api/capture/proof", `{"proof":{}}`, fmt.Errorf("photo: %w", validators.ErrPayloadTooLarge), http.StatusRequestEntityTooLarge},
		{"unsupported media", "/api/capture/proof", `{"proof":{}}`, validators.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"missing location", "/api/capture/attendance", `{}`, validators.ErrMissingLocationCheck, http.StatusBadRequest},
		{"missing status", "/api/capture/status", `{}`, validators.ErrInvalidStatus, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			d.capture.err = tt.err

			rec := serve(t, d.handler(), http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

// ── Cache ────────────────────────────────────────────────────────────────────

func TestCacheEndpoints(t *testing.T) {
	d := newTestDeps()
	d.cache.tasks = []models.CachedEntity{{LocalID: 1, RemoteID: "T-1", Data: json.RawMessage(`{"id":"T-1"}`)}}
	h := d.handler()

	rec := serve(t, h, http.MethodGet, "/api/cache/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[[]models.CachedEntity](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "T-1", got[0].RemoteID)

	rec = serve(t, h, http.MethodGet, "/api/cache/schools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(t, h, http.MethodPost, "/api/cache/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CacheRefreshResult{Tasks: 1, Schools: 0}, decodeBody[models.CacheRefreshResult](t, rec))
	assert.Equal(t, 2, d.cache.refreshed)
}

func TestRefreshCache_StopsOnFirstFailure(t *testing.T) {
	d := newTestDeps()
	d.cache.tasksErr = fmt.Errorf("fetch tasks: %w", adapter.ErrConnectivity)

	rec := serve(t, d.handler(), http.MethodPost, "/api/cache/refresh", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1, d.cache.refreshed)
}

// ── statusFromError ──────────────────────────────────────────────────────────

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid limit", ErrInvalidLimit, http.StatusBadRequest},
		{"settings", service.ErrInvalidSettings, http.StatusBadRequest},
		{"missing prerequisite", validators.ErrMissingPrerequisite, http.StatusBadRequest},
		{"too large wins over validation", validators.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"offline", adapter.ErrConnectivity, http.StatusServiceUnavailable},
		{"remote", &adapter.RemoteError{StatusCode: 500, Err: adapter.ErrServer}, http.StatusBadGateway},
		{"not found", fmt.Errorf("get: %w", store.ErrNotFound), http.StatusNotFound},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}
