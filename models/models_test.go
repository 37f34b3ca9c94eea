// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemoteID(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{`{"id":"T-1"}`, "T-1"},
		{`{"id":55}`, "55"},
		{`{"id":null}`, ""},
		{`{"name":"x"}`, ""},
		{`[1,2]`, ""},
		{``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoteID(json.RawMessage(tt.doc)))
		})
	}
}

func TestConflictBody_Existing(t *testing.T) {
	var body ConflictBody
	assert.Nil(t, body.Existing())

	body = ConflictBody{ExistingEPOD: json.RawMessage(`null`), ExistingTask: json.RawMessage(`{"id":"T-1"}`)}
	assert.JSONEq(t, `{"id":"T-1"}`, string(body.Existing()))
}

func TestRecord(t *testing.T) {
	r := Record{
		"a": int64(1),
		"b": 2,
		"c": float64(3),
		"d": json.Number("4"),
		"e": "five",
	}

	assert.Equal(t, int64(1), r.Int64("a"))
	assert.Equal(t, int64(2), r.Int64("b"))
	assert.Equal(t, int64(3), r.Int64("c"))
	assert.Equal(t, int64(4), r.Int64("d"))
	assert.Zero(t, r.Int64("e"))
	assert.Equal(t, "five", r.String("e"))
	assert.Empty(t, r.String("a"))

	c := r.Clone()
	c["a"] = int64(10)
	assert.Equal(t, int64(1), r.Int64("a"))
	assert.Nil(t, Record(nil).Clone())
}

func TestItemType(t *testing.T) {
	for _, it := range ItemTypes {
		assert.True(t, it.Valid(), it)
	}
	assert.False(t, ItemType("fax").Valid())
	assert.True(t, ItemTypeEPODSignature.DependsOnEPOD())
	assert.False(t, ItemTypeEPOD.DependsOnEPOD())
}

func TestSyncSettings(t *testing.T) {
	def := DefaultSyncSettings()
	assert.Equal(t, 500*time.Millisecond, def.BatchDelay())

	n := SyncSettings{BatchDelayMS: -5}.Normalize()
	assert.Equal(t, def.MaxRetries, n.MaxRetries)
	assert.Equal(t, def.BatchSize, n.BatchSize)
	assert.Equal(t, StrategyServerWins, n.ConflictStrategy)
	assert.Zero(t, n.BatchDelayMS)

	// unknown strategies survive normalization
	assert.Equal(t, ConflictStrategy("newest"), SyncSettings{ConflictStrategy: "newest"}.Normalize().ConflictStrategy)

	auto := false
	batch := 50
	patch := SettingsPatch{AutoSync: &auto, BatchSize: &batch}
	assert.False(t, patch.IsEmpty())
	assert.True(t, SettingsPatch{}.IsEmpty())

	got := def.Apply(patch)
	assert.False(t, got.AutoSync)
	assert.Equal(t, 50, got.BatchSize)
	assert.Equal(t, def.MaxRetries, got.MaxRetries)
}

func TestSyncProgress_Percent(t *testing.T) {
	assert.Zero(t, SyncProgress{Status: SyncStateSyncing}.Percent())
	assert.Equal(t, 1.0, SyncProgress{Status: SyncStateCompleted}.Percent())
	assert.InDelta(t, 0.75, SyncProgress{Total: 4, Completed: 2, Skipped: 1}.Percent(), 1e-9)
	assert.True(t, SyncStateError.Terminal())
	assert.False(t, SyncStatePreparing.Terminal())
}

func TestNewAppBuildInfo(t *testing.T) {
	info := NewAppBuildInfo("1.2.0", "", "abc123")
	assert.Equal(t, "N/A", info.Date)
	assert.Equal(t, "Build version: 1.2.0\nBuild date: N/A\nBuild commit: abc123", info.String())
}
