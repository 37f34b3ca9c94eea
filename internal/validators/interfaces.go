// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks queued payloads and captured media before they
// are sent to the remote API.
//
// Every rejection matches [ErrValidation] so that callers can tell a
// terminal local rejection apart from transport or remote failures.
// [ErrMissingPrerequisite] is a validation error as well, but callers
// usually treat it as "not yet" rather than "never".
package validators

import "context"

// Validator validates the provided input and optionally restricts
// validation to specific named fields.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
