// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-field-sync/models"
)

func conflictInputs() (local, remote models.Record) {
	local = models.Record{
		"id":             "local-1",
		"recipient_name": "Ana",
		"notes":          "left at gate",
		"updated_at":     "2026-05-01T10:00:00Z",
		"items":          []any{map[string]any{"meal_type": "lunch"}, map[string]any{"meal_type": "snack"}},
	}
	remote = models.Record{
		"id":             "55",
		"recipient_name": "Ana M.",
		"status":         "delivered",
		"updated_at":     "2026-05-01T11:00:00Z",
		"items":          []any{map[string]any{"meal_type": "breakfast"}, map[string]any{"meal_type": "lunch"}},
	}
	return local, remote
}

// ── Resolve ─────────────────────────────────────────────────────────────────

func TestResolve_ServerWins(t *testing.T) {
	local, remote := conflictInputs()

	got, err := Resolve(local, remote, models.StrategyServerWins)
	require.NoError(t, err)
	assert.Equal(t, remote, got)

	got["status"] = "changed"
	assert.Equal(t, "delivered", remote["status"], "result must be a copy")
}

func TestResolve_ClientWins(t *testing.T) {
	local, remote := conflictInputs()

	got, err := Resolve(local, remote, models.StrategyClientWins)
	require.NoError(t, err)
	assert.Equal(t, local, got)
}

func TestResolve_Merge(t *testing.T) {
	local, remote := conflictInputs()

	got, err := Resolve(local, remote, models.StrategyMerge)
	require.NoError(t, err)

	assert.Equal(t, "local-1", got["id"], "local fields override")
	assert.Equal(t, "Ana", got["recipient_name"])
	assert.Equal(t, "left at gate", got["notes"])
	assert.Equal(t, "delivered", got["status"], "remote-only fields survive")
	assert.Equal(t, "2026-05-01T11:00:00Z", got["updated_at"], "remote updated_at is kept")
	assert.Equal(t, []any{
		map[string]any{"meal_type": "breakfast"},
		map[string]any{"meal_type": "lunch"},
		map[string]any{"meal_type": "snack"},
	}, got["items"])
}

func TestResolve_MergeDoesNotMutateInputs(t *testing.T) {
	local, remote := conflictInputs()
	localBefore, remoteBefore := local.Clone(), remote.Clone()

	_, err := Resolve(local, remote, models.StrategyMerge)
	require.NoError(t, err)

	assert.Equal(t, localBefore, local)
	assert.Equal(t, remoteBefore, remote)
	assert.Len(t, remote["items"], 2)
}

func TestResolve_MergeWithoutItemsOnOneSide(t *testing.T) {
	local := models.Record{"items": []any{"a"}}
	remote := models.Record{"status": "done"}

	got, err := Resolve(local, remote, models.StrategyMerge)
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, got["items"])
	_, hasUpdatedAt := got["updated_at"]
	assert.False(t, hasUpdatedAt)
}

func TestResolve_UnknownStrategyFallsBackToServer(t *testing.T) {
	local, remote := conflictInputs()

	got, err := Resolve(local, remote, "newest_wins")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Equal(t, remote, got)
}

func TestResolve_NilInputs(t *testing.T) {
	got, err := Resolve(nil, nil, models.StrategyMerge)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ── decodeRecord ────────────────────────────────────────────────────────────

func TestDecodeRecord_KeepsNumbers(t *testing.T) {
	rec, err := decodeRecord([]byte(`{"id":55,"local_id":9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, int64(55), rec.Int64("id"))
	assert.Equal(t, int64(9007199254740993), rec.Int64("local_id"))

	_, err = decodeRecord([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
