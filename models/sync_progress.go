// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncState is the state of the sync run state machine.
type SyncState string

const (
	SyncStateIdle                SyncState = "idle"
	SyncStatePreparing           SyncState = "preparing"
	SyncStateSyncing             SyncState = "syncing"
	SyncStateCompleted           SyncState = "completed"
	SyncStateCompletedWithErrors SyncState = "completed_with_errors"
	SyncStateError               SyncState = "error"
)

// Terminal reports whether s ends a run.
func (s SyncState) Terminal() bool {
	return s == SyncStateCompleted || s == SyncStateCompletedWithErrors || s == SyncStateError
}

// SyncProgress is a snapshot of the current or last run.
type SyncProgress struct {
	RunID       string     `json:"run_id,omitempty"`
	Status      SyncState  `json:"status"`
	Total       int        `json:"total"`
	Completed   int        `json:"completed"`
	Failed      int        `json:"failed"`
	Skipped     int        `json:"skipped"`
	CurrentItem string     `json:"current_item,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Processed returns the number of items the run has finished with.
func (p SyncProgress) Processed() int {
	return p.Completed + p.Failed + p.Skipped
}

// Percent returns the share of processed items in [0, 1].
func (p SyncProgress) Percent() float64 {
	if p.Total == 0 {
		if p.Status.Terminal() {
			return 1
		}
		return 0
	}
	return float64(p.Processed()) / float64(p.Total)
}

// Run rejection reasons.
const (
	ReasonAlreadyRunning = "already_running"
	ReasonOffline        = "offline"
)

// RunResult is returned by a sync trigger.
type RunResult struct {
	Started  bool         `json:"started"`
	Reason   string       `json:"reason,omitempty"`
	Progress SyncProgress `json:"progress"`
}

// SyncAction is the outcome recorded in the sync log for one handler call.
type SyncAction string

const (
	SyncActionSuccess          SyncAction = "success"
	SyncActionConflictResolved SyncAction = "conflict_resolved"
	SyncActionFailed           SyncAction = "failed"
	SyncActionDeferred         SyncAction = "deferred"
	SyncActionError            SyncAction = "error"
)

// SyncLogEntry is an append-only record of one handler invocation.
type SyncLogEntry struct {
	ID          int64      `json:"id"`
	RunID       string     `json:"run_id"`
	QueueItemID int64      `json:"queue_item_id"`
	ItemType    ItemType   `json:"item_type"`
	Action      SyncAction `json:"action"`
	Message     string     `json:"message,omitempty"`
	DurationMS  int64      `json:"duration_ms"`
	PayloadSize int        `json:"payload_size"`
	CreatedAt   time.Time  `json:"created_at"`
}

// EngineStatus is the aggregated view served to operators.
type EngineStatus struct {
	Online       bool         `json:"online"`
	Progress     SyncProgress `json:"progress"`
	Queue        QueueStats   `json:"queue"`
	LastSyncTime *time.Time   `json:"last_sync_time,omitempty"`
	Settings     SyncSettings `json:"settings"`
}
