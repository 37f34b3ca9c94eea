// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// Record is a loosely typed row or remote document keyed by field name.
type Record map[string]any

// Clone returns a shallow copy of r. Slices and maps nested in r are shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value under key as a string, or "" when it is absent
// or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int64 returns the value under key as int64. JSON numbers decoded as
// float64 are converted.
func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// SyncStatus is the upload state of a locally captured record.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// CapturedProof is a proof-of-delivery captured on the device.
type CapturedProof struct {
	ID          int64           `json:"id"`
	TaskID      string          `json:"task_id"`
	ServerID    string          `json:"server_id,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	SyncStatus  SyncStatus      `json:"sync_status"`
	RetryCount  int             `json:"retry_count"`
	LastAttempt *time.Time      `json:"last_attempt,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CachedEntity is a read-only copy of a remote record kept for offline use.
type CachedEntity struct {
	LocalID     int64           `json:"local_id"`
	RemoteID    string          `json:"remote_id"`
	Data        json.RawMessage `json:"data"`
	CachedAt    time.Time       `json:"cached_at"`
	LastUpdated time.Time       `json:"last_updated"`
}

// MediaKind selects the media table.
type MediaKind string

const (
	MediaKindPhoto     MediaKind = "photo"
	MediaKindSignature MediaKind = "signature"
)

// MediaFile is a binary attachment captured with a proof-of-delivery.
type MediaFile struct {
	ID         int64      `json:"id"`
	Kind       MediaKind  `json:"kind"`
	TaskID     string     `json:"task_id"`
	ProofID    int64      `json:"proof_id"`
	FileName   string     `json:"file_name"`
	MimeType   string     `json:"mime_type"`
	Size       int64      `json:"size"`
	Data       []byte     `json:"-"`
	SyncStatus SyncStatus `json:"sync_status"`
	RemoteRef  string     `json:"remote_ref,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CacheRefreshResult reports how many reference records a refresh stored.
type CacheRefreshResult struct {
	Tasks   int `json:"tasks"`
	Schools int `json:"schools"`
}
