// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

func ptr[T any](v T) *T { return &v }

func newTestSettings(t *testing.T) (SettingsStore, *store.Storages) {
	t.Helper()
	s := newTestStorages(t)
	return NewSettingsStore(s.Meta, models.DefaultSyncSettings(), logger.Nop()), s
}

// ── Settings ────────────────────────────────────────────────────────────────

func TestSettingsStore_DefaultsWhenUnset(t *testing.T) {
	settings, _ := newTestSettings(t)

	got, err := settings.Settings(testContext())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSyncSettings(), got)
}

func TestSettingsStore_EnsureDefaultsKeepsExisting(t *testing.T) {
	settings, _ := newTestSettings(t)
	ctx := testContext()

	require.NoError(t, settings.EnsureDefaults(ctx))
	_, err := settings.UpdateSettings(ctx, models.SettingsPatch{BatchSize: ptr(25)})
	require.NoError(t, err)
	require.NoError(t, settings.EnsureDefaults(ctx))

	got, err := settings.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, got.BatchSize)
}

func TestSettingsStore_UpdateSettings(t *testing.T) {
	settings, _ := newTestSettings(t)
	ctx := testContext()

	got, err := settings.UpdateSettings(ctx, models.SettingsPatch{
		AutoSync:         ptr(false),
		ConflictStrategy: ptr(models.StrategyMerge),
		BatchDelayMS:     ptr(int64(0)),
	})
	require.NoError(t, err)
	assert.False(t, got.AutoSync)
	assert.Equal(t, models.StrategyMerge, got.ConflictStrategy)
	assert.Zero(t, got.BatchDelayMS)
	assert.Equal(t, 3, got.MaxRetries, "untouched fields keep their value")

	reloaded, err := settings.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, reloaded)
}

func TestSettingsStore_UpdateSettingsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		patch models.SettingsPatch
	}{
		{"zero retries", models.SettingsPatch{MaxRetries: ptr(0)}},
		{"zero batch", models.SettingsPatch{BatchSize: ptr(0)}},
		{"negative delay", models.SettingsPatch{BatchDelayMS: ptr(int64(-1))}},
		{"unknown strategy", models.SettingsPatch{ConflictStrategy: ptr(models.ConflictStrategy("newest"))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, _ := newTestSettings(t)
			_, err := settings.UpdateSettings(testContext(), tt.patch)
			assert.ErrorIs(t, err, ErrInvalidSettings)

			got, err := settings.Settings(testContext())
			require.NoError(t, err)
			assert.Equal(t, models.DefaultSyncSettings(), got)
		})
	}
}

func TestSettingsStore_CorruptDocumentFallsBack(t *testing.T) {
	settings, s := newTestSettings(t)
	ctx := testContext()

	require.NoError(t, s.Meta.Set(ctx, models.MetaKeySyncSettings, "{broken"))

	got, err := settings.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSyncSettings(), got)
}

// ── LastSyncTime ────────────────────────────────────────────────────────────

func TestSettingsStore_LastSyncTime(t *testing.T) {
	settings, _ := newTestSettings(t)
	ctx := testContext()

	last, err := settings.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	at := time.Date(2026, 5, 2, 7, 30, 0, 0, time.UTC)
	require.NoError(t, settings.SetLastSyncTime(ctx, at))

	last, err = settings.LastSyncTime(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, at, *last)
}
