// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cli implements the fieldsync command line: the headless agent,
// the terminal sync monitor and one-shot commands that inspect and drive
// the local sync queue.
package cli
