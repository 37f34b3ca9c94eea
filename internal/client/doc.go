// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the field sync application.
//
// [App] opens the local store, builds the remote adapter, the connectivity
// monitor and the sync services, and runs the background workers and the
// optional control API under one lifecycle.
package client
