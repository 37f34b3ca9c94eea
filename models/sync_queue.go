// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// ItemType identifies the kind of operation stored in a sync queue item.
// The set is closed: every value has exactly one upload handler.
type ItemType string

const (
	// ItemTypeEPOD is a proof-of-delivery record.
	ItemTypeEPOD ItemType = "epod"
	// ItemTypeEPODPhoto is a delivery photo attached to a proof-of-delivery.
	ItemTypeEPODPhoto ItemType = "epod_photo"
	// ItemTypeEPODSignature is a recipient signature attached to a proof-of-delivery.
	ItemTypeEPODSignature ItemType = "epod_signature"
	// ItemTypeStatusUpdate is a task status transition.
	ItemTypeStatusUpdate ItemType = "status_update"
	// ItemTypeAttendance is a check-in or check-out record.
	ItemTypeAttendance ItemType = "attendance"
)

// ItemTypes lists every known [ItemType].
var ItemTypes = []ItemType{
	ItemTypeEPOD,
	ItemTypeEPODPhoto,
	ItemTypeEPODSignature,
	ItemTypeStatusUpdate,
	ItemTypeAttendance,
}

// Valid reports whether t belongs to the closed set of item types.
func (t ItemType) Valid() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DependsOnEPOD reports whether items of type t need the server id of a
// previously uploaded proof-of-delivery.
func (t ItemType) DependsOnEPOD() bool {
	return t == ItemTypeEPODPhoto || t == ItemTypeEPODSignature
}

// QueueStatus is the lifecycle state of a [SyncQueueItem].
type QueueStatus string

const (
	// QueueStatusPending marks an item that is waiting for upload.
	QueueStatusPending QueueStatus = "pending"
	// QueueStatusFailed marks an item that exhausted its retry budget.
	QueueStatusFailed QueueStatus = "failed"
)

// Queue priorities. Lower values are uploaded first.
const (
	PriorityUrgent  = 1
	PriorityHigh    = 2
	PriorityDefault = 3
)

// SyncQueueItem is one pending outbound operation.
type SyncQueueItem struct {
	ID           int64           `json:"id"`
	Type         ItemType        `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	Status       QueueStatus     `json:"status"`
	RetryCount   int             `json:"retry_count"`
	LastAttempt  *time.Time      `json:"last_attempt,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Priority     int             `json:"priority"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ConflictData json.RawMessage `json:"conflict_data,omitempty"`

	// CorrelationID groups a parent item with the items that depend on it
	// (a proof-of-delivery and its photo and signature share the task id).
	CorrelationID string `json:"correlation_id,omitempty"`

	// PrerequisiteID is the server id of the parent record once it is known.
	PrerequisiteID string `json:"prerequisite_id,omitempty"`
}

// EnqueueOptions carries optional attributes of a new queue item.
type EnqueueOptions struct {
	CorrelationID  string
	PrerequisiteID string
}

// QueueItemUpdate is a partial update of a queue item. Nil fields are left
// unchanged.
type QueueItemUpdate struct {
	Status         *QueueStatus
	RetryCount     *int
	LastAttempt    *time.Time
	ErrorMessage   *string
	ConflictData   json.RawMessage
	PrerequisiteID *string
}

// QueueStats summarises the queue content by status.
type QueueStats struct {
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// EnqueueRequest is the control API body for queueing an arbitrary item.
type EnqueueRequest struct {
	Type           ItemType        `json:"type"`
	Payload        json.RawMessage `json:"payload"`
	Priority       int             `json:"priority,omitempty"`
	CorrelationID  string          `json:"correlation_id,omitempty"`
	PrerequisiteID string          `json:"prerequisite_id,omitempty"`
}

// Options returns the enqueue options carried by r.
func (r EnqueueRequest) Options() EnqueueOptions {
	return EnqueueOptions{CorrelationID: r.CorrelationID, PrerequisiteID: r.PrerequisiteID}
}

// EnqueueResponse reports the id of a queued item.
type EnqueueResponse struct {
	ID int64 `json:"id"`
}

// AffectedResponse reports how many queue items an operation touched.
type AffectedResponse struct {
	Affected int64 `json:"affected"`
}
