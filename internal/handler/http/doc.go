// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the local control API of the sync engine.
//
// The API lets the host application and the operator inspect the queue,
// trigger runs, retry or clear failed items, change sync settings, record
// captures and follow run progress over a websocket. Request tracing and
// access logging are handled here before calls reach the service layer.
package http
