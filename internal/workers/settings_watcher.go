// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

// settingsDebounce collapses the burst of events editors emit on save.
const settingsDebounce = 200 * time.Millisecond

// settingsFile is the on-disk shape of a settings override. Absent keys
// leave the stored value unchanged.
type settingsFile struct {
	AutoSync         *bool            `json:"auto_sync" yaml:"auto_sync" toml:"auto_sync"`
	MaxRetries       *int             `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	BatchSize        *int             `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	ConflictStrategy *string          `json:"conflict_strategy" yaml:"conflict_strategy" toml:"conflict_strategy"`
	BatchDelay       *config.Duration `json:"batch_delay" yaml:"batch_delay" toml:"batch_delay"`
}

func (f settingsFile) patch() models.SettingsPatch {
	p := models.SettingsPatch{
		AutoSync:   f.AutoSync,
		MaxRetries: f.MaxRetries,
		BatchSize:  f.BatchSize,
	}
	if f.ConflictStrategy != nil {
		s := models.ConflictStrategy(*f.ConflictStrategy)
		p.ConflictStrategy = &s
	}
	if f.BatchDelay != nil {
		ms := f.BatchDelay.D().Milliseconds()
		p.BatchDelayMS = &ms
	}
	return p
}

// loadSettingsPatch reads the settings file at path.
func loadSettingsPatch(path string) (models.SettingsPatch, error) {
	var f settingsFile
	if err := config.DecodeFile(path, &f); err != nil {
		return models.SettingsPatch{}, err
	}
	return f.patch(), nil
}

// SettingsWatcher applies a JSON, YAML or TOML settings file to the stored
// sync settings on start and whenever the file changes. The parent
// directory is watched so that editors replacing the file by rename are
// noticed.
type SettingsWatcher struct {
	path     string
	settings SettingsUpdater
	logger   *logger.Logger
}

func NewSettingsWatcher(path string, settings SettingsUpdater, logger *logger.Logger) *SettingsWatcher {
	return &SettingsWatcher{path: filepath.Clean(path), settings: settings, logger: logger}
}

func (w *SettingsWatcher) Name() string { return "settings-watcher" }

func (w *SettingsWatcher) Run(ctx context.Context) error {
	ctx = w.logger.WithContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err = watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.apply(ctx)

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(settingsDebounce)
			} else {
				debounce.Reset(settingsDebounce)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			w.apply(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.FromContext(ctx).Warn().Err(err).Str("func", "SettingsWatcher.Run").Msg("settings watcher error")
		}
	}
}

func (w *SettingsWatcher) apply(ctx context.Context) {
	log := logger.FromContext(ctx)

	patch, err := loadSettingsPatch(w.path)
	if err != nil {
		log.Warn().Err(err).Str("func", "SettingsWatcher.apply").Str("path", w.path).Msg("settings file ignored")
		return
	}
	if patch.IsEmpty() {
		return
	}

	settings, err := w.settings.UpdateSettings(ctx, patch)
	if err != nil {
		log.Warn().Err(err).Str("func", "SettingsWatcher.apply").Str("path", w.path).Msg("settings file rejected")
		return
	}
	log.Info().Str("func", "SettingsWatcher.apply").Interface("settings", settings).Msg("settings file applied")
}
