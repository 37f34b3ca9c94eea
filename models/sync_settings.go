// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ConflictStrategy selects how a local record and an existing remote record
// are reconciled when the remote rejects an upload as a duplicate.
type ConflictStrategy string

const (
	StrategyServerWins ConflictStrategy = "server_wins"
	StrategyClientWins ConflictStrategy = "client_wins"
	StrategyMerge      ConflictStrategy = "merge"
)

// Valid reports whether s is a known strategy.
func (s ConflictStrategy) Valid() bool {
	switch s {
	case StrategyServerWins, StrategyClientWins, StrategyMerge:
		return true
	}
	return false
}

// Sync metadata keys.
const (
	MetaKeyLastSyncTime = "lastSyncTime"
	MetaKeySyncSettings = "syncSettings"
)

// SyncSettings is the persisted run configuration.
type SyncSettings struct {
	AutoSync         bool             `json:"autoSync"`
	MaxRetries       int              `json:"maxRetries"`
	BatchSize        int              `json:"batchSize"`
	ConflictStrategy ConflictStrategy `json:"conflictStrategy"`
	BatchDelayMS     int64            `json:"batchDelayMs"`
}

// DefaultSyncSettings returns the settings used when none are stored.
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		AutoSync:         true,
		MaxRetries:       3,
		BatchSize:        10,
		ConflictStrategy: StrategyServerWins,
		BatchDelayMS:     500,
	}
}

// BatchDelay returns the pause between two batches.
func (s SyncSettings) BatchDelay() time.Duration {
	return time.Duration(s.BatchDelayMS) * time.Millisecond
}

// Normalize replaces out-of-range values with defaults. The strategy is kept
// as is so that the resolver can report an unknown value.
func (s SyncSettings) Normalize() SyncSettings {
	def := DefaultSyncSettings()
	if s.MaxRetries <= 0 {
		s.MaxRetries = def.MaxRetries
	}
	if s.BatchSize <= 0 {
		s.BatchSize = def.BatchSize
	}
	if s.BatchDelayMS < 0 {
		s.BatchDelayMS = 0
	}
	if s.ConflictStrategy == "" {
		s.ConflictStrategy = def.ConflictStrategy
	}
	return s
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	AutoSync         *bool             `json:"autoSync,omitempty"`
	MaxRetries       *int              `json:"maxRetries,omitempty"`
	BatchSize        *int              `json:"batchSize,omitempty"`
	ConflictStrategy *ConflictStrategy `json:"conflictStrategy,omitempty"`
	BatchDelayMS     *int64            `json:"batchDelayMs,omitempty"`
}

// Apply returns s with every non-nil field of p applied.
func (s SyncSettings) Apply(p SettingsPatch) SyncSettings {
	if p.AutoSync != nil {
		s.AutoSync = *p.AutoSync
	}
	if p.MaxRetries != nil {
		s.MaxRetries = *p.MaxRetries
	}
	if p.BatchSize != nil {
		s.BatchSize = *p.BatchSize
	}
	if p.ConflictStrategy != nil {
		s.ConflictStrategy = *p.ConflictStrategy
	}
	if p.BatchDelayMS != nil {
		s.BatchDelayMS = *p.BatchDelayMS
	}
	return s
}

// IsEmpty reports whether p changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.AutoSync == nil && p.MaxRetries == nil && p.BatchSize == nil &&
		p.ConflictStrategy == nil && p.BatchDelayMS == nil
}
