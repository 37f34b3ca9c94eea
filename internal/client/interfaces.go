// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/MKhiriev/go-field-sync/models"
)

// Client is the lifecycle contract of the assembled application.
type Client interface {
	// Run starts the background workers and blocks until ctx is cancelled
	// or a worker fails.
	Run(ctx context.Context) error

	// SyncNow brings the monitor up to date and runs one sync pass.
	SyncNow(ctx context.Context) (models.RunResult, error)

	Close() error
}
