// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils holds small helpers shared by the adapter, the service layer
// and the control API: the resty client wrapper, idempotency keys, token
// expiry checks, run ids carried in a context and JSON response writing.
package utils
