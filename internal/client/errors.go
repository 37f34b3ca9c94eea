// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "errors"

// ErrOffline is returned by SyncNow when the remote cannot be reached.
var ErrOffline = errors.New("remote API is unreachable")
