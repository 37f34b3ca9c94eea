// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package config provides configuration loading, merging, and validation
// facilities for the sync engine.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Config file (JSON, YAML or TOML, chosen by extension)
//  3. Environment variables
//  4. Command-line flags
//
// The main entry points are [RegisterFlags], which defines the flags on a
// cobra persistent flag set, and [GetClientConfig].
package config
