// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// MediaCapture is a photo or signature as produced by the capture UI.
type MediaCapture struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data"`
}

// ProofCapture is a completed delivery with its optional evidence.
type ProofCapture struct {
	Proof     EPODPayload   `json:"proof"`
	Photo     *MediaCapture `json:"photo,omitempty"`
	Signature *MediaCapture `json:"signature,omitempty"`
}

// CaptureReceipt reports the local rows and queue items created for one
// captured action.
type CaptureReceipt struct {
	LocalID  int64               `json:"local_id,omitempty"`
	MediaIDs map[MediaKind]int64 `json:"media_ids,omitempty"`
	QueueIDs []int64             `json:"queue_ids"`
}
