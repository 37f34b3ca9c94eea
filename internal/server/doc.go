// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the local control API.
//
// The HTTP server is run as a long-lived worker: it serves until its
// context is cancelled and then shuts down gracefully, closing open
// progress streams first.
package server
