// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/internal/store"
	"github.com/MKhiriev/go-field-sync/models"
)

type settingsStore struct {
	meta     store.SyncMetaRepository
	defaults models.SyncSettings

	// serializes read-modify-write of the settings document
	mu sync.Mutex

	logger *logger.Logger
}

// NewSettingsStore returns a [SettingsStore] falling back to defaults
// while nothing is stored.
func NewSettingsStore(meta store.SyncMetaRepository, defaults models.SyncSettings, logger *logger.Logger) SettingsStore {
	return &settingsStore{meta: meta, defaults: defaults.Normalize(), logger: logger}
}

func (s *settingsStore) Settings(ctx context.Context) (models.SyncSettings, error) {
	raw, err := s.meta.Get(ctx, models.MetaKeySyncSettings)
	if errors.Is(err, store.ErrNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return s.defaults, fmt.Errorf("read sync settings: %w", err)
	}

	settings := s.defaults
	if err = json.Unmarshal([]byte(raw), &settings); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("func", "settingsStore.Settings").
			Msg("stored sync settings are corrupt, using defaults")
		return s.defaults, nil
	}
	return settings.Normalize(), nil
}

func (s *settingsStore) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.SyncSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Settings(ctx)
	if err != nil {
		return current, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	next := current.Apply(patch)
	if err = validateSettings(next); err != nil {
		return current, err
	}
	if err = s.write(ctx, next); err != nil {
		return current, err
	}

	logger.FromContext(ctx).Info().Str("func", "settingsStore.UpdateSettings").
		Interface("settings", next).Msg("sync settings updated")
	return next, nil
}

func (s *settingsStore) EnsureDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.meta.Get(ctx, models.MetaKeySyncSettings)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("read sync settings: %w", err)
	}
	return s.write(ctx, s.defaults)
}

func (s *settingsStore) write(ctx context.Context, settings models.SyncSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode sync settings: %w", err)
	}
	if err = s.meta.Set(ctx, models.MetaKeySyncSettings, string(raw)); err != nil {
		return fmt.Errorf("store sync settings: %w", err)
	}
	return nil
}

func (s *settingsStore) LastSyncTime(ctx context.Context) (*time.Time, error) {
	raw, err := s.meta.Get(ctx, models.MetaKeyLastSyncTime)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read last sync time: %w", err)
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}

func (s *settingsStore) SetLastSyncTime(ctx context.Context, t time.Time) error {
	if err := s.meta.Set(ctx, models.MetaKeyLastSyncTime, strconv.FormatInt(t.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("store last sync time: %w", err)
	}
	return nil
}

func validateSettings(s models.SyncSettings) error {
	switch {
	case s.MaxRetries < 1:
		return fmt.Errorf("%w: maxRetries must be at least 1", ErrInvalidSettings)
	case s.BatchSize < 1:
		return fmt.Errorf("%w: batchSize must be at least 1", ErrInvalidSettings)
	case s.BatchDelayMS < 0:
		return fmt.Errorf("%w: batchDelayMs must not be negative", ErrInvalidSettings)
	case !s.ConflictStrategy.Valid():
		return fmt.Errorf("%w: %w %q", ErrInvalidSettings, ErrUnknownStrategy, s.ConflictStrategy)
	}
	return nil
}
