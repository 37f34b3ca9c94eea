// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "context"

// Server is a transport server run under the worker group.
type Server interface {
	Name() string

	// Run serves until ctx is cancelled, then shuts down gracefully.
	Run(ctx context.Context) error
}
