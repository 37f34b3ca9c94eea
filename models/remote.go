// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/json"
)

// RemoteResponse is the envelope returned by every remote endpoint.
type RemoteResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// RemoteRef is the minimal shape of a remote record. The remote uses numeric
// ids for some resources and string ids for others.
type RemoteRef struct {
	ID json.RawMessage `json:"id"`
}

// String returns the id as text, or "" when it is absent or null.
func (r RemoteRef) String() string {
	raw := bytes.TrimSpace(r.ID)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}

// RemoteID extracts the id field of a remote document.
func RemoteID(doc json.RawMessage) string {
	var ref RemoteRef
	if err := json.Unmarshal(doc, &ref); err != nil {
		return ""
	}
	return ref.String()
}

// ConflictBody is the body of a 409 response. At most one of the existing_*
// fields is set, depending on the endpoint.
type ConflictBody struct {
	Success            bool            `json:"success"`
	Message            string          `json:"message,omitempty"`
	ExistingEPOD       json.RawMessage `json:"existing_epod,omitempty"`
	ExistingTask       json.RawMessage `json:"existing_task,omitempty"`
	ExistingAttendance json.RawMessage `json:"existing_attendance,omitempty"`
}

// Existing returns the first non-empty existing_* document.
func (b ConflictBody) Existing() json.RawMessage {
	for _, raw := range []json.RawMessage{b.ExistingEPOD, b.ExistingTask, b.ExistingAttendance} {
		if len(raw) > 0 && string(raw) != "null" {
			return raw
		}
	}
	return nil
}

// UploadResult is what the remote adapter reports for a successful upload.
type UploadResult struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MediaUpload describes a binary upload to the remote.
type MediaUpload struct {
	FieldName string
	FileName  string
	MimeType  string
	Data      []byte
}
