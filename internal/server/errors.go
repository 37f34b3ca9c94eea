// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	errNoServersAreCreated = errors.New("no servers are created")

	// ErrListen wraps a failure to bind the control API address.
	ErrListen = errors.New("control api listen failed")
)
