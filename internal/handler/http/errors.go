// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrInvalidJSON is returned when a request body cannot be decoded.
	ErrInvalidJSON = errors.New("invalid JSON was passed")

	// ErrInvalidLimit is returned for a non-numeric or negative limit query
	// parameter.
	ErrInvalidLimit = errors.New("invalid limit")

	ErrEmptyPatch = errors.New("settings patch is empty")
)
