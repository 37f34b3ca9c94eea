// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// DeliveredItem is one line of a proof-of-delivery.
type DeliveredItem struct {
	MealType string `json:"meal_type"`
	Portions int    `json:"portions"`
}

// EPODPayload is the queue payload of an [ItemTypeEPOD] item.
type EPODPayload struct {
	LocalID       int64           `json:"local_id"`
	TaskID        string          `json:"task_id"`
	SchoolID      string          `json:"school_id,omitempty"`
	RecipientName string          `json:"recipient_name"`
	DeliveredAt   time.Time       `json:"delivered_at"`
	Items         []DeliveredItem `json:"items,omitempty"`
	Latitude      float64         `json:"latitude,omitempty"`
	Longitude     float64         `json:"longitude,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MediaPayload is the queue payload of [ItemTypeEPODPhoto] and
// [ItemTypeEPODSignature] items. The binary content stays in the media
// tables and is referenced by MediaID.
type MediaPayload struct {
	MediaID      int64  `json:"media_id"`
	TaskID       string `json:"task_id"`
	ProofLocalID int64  `json:"proof_local_id"`
	EPODServerID string `json:"epod_server_id,omitempty"`
}

// StatusUpdatePayload is the queue payload of an [ItemTypeStatusUpdate] item.
type StatusUpdatePayload struct {
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttendanceKind distinguishes check-in from check-out.
type AttendanceKind string

const (
	AttendanceCheckIn  AttendanceKind = "check_in"
	AttendanceCheckOut AttendanceKind = "check_out"
)

// AttendanceValidation is the opaque outcome of the location validator.
// It is stored and relayed unchanged.
type AttendanceValidation struct {
	IsValid bool           `json:"isValid"`
	Method  string         `json:"method"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// AttendancePayload is the queue payload of an [ItemTypeAttendance] item.
type AttendancePayload struct {
	LocalID    int64                `json:"local_id"`
	Kind       AttendanceKind       `json:"kind"`
	SchoolID   string               `json:"school_id,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
	Latitude   float64              `json:"latitude,omitempty"`
	Longitude  float64              `json:"longitude,omitempty"`
	Validation AttendanceValidation `json:"validation"`
	UpdatedAt  time.Time            `json:"updated_at"`
}
