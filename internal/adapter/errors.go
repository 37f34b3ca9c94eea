// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrConnectivity is returned when the request never got a response:
	// DNS, dial, TLS, timeout or a cancelled context.
	ErrConnectivity = errors.New("remote unreachable")

	// ErrConflict matches every [ConflictError].
	ErrConflict = errors.New("remote conflict")

	// ErrRemote matches every [RemoteError].
	ErrRemote = errors.New("remote error")

	// ErrInvalidBaseURL is returned by the constructor for an empty or
	// malformed base URL.
	ErrInvalidBaseURL = errors.New("invalid remote base url")

	// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed remote response")
)

// Status classes of a [RemoteError]. A RemoteError unwraps to one of them.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrServer           = errors.New("server error")
	ErrRejected         = errors.New("rejected")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// ConflictError is a 409 response. Existing holds the record the remote
// already has (existing_epod, existing_task or existing_attendance), if
// the body carried one.
type ConflictError struct {
	Message  string
	Existing json.RawMessage
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return ErrConflict.Error()
	}
	return fmt.Sprintf("%s: %s", ErrConflict, e.Message)
}

// Is reports whether target is [ErrConflict].
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// RemoteError is a non-2xx response other than 409, or a 2xx response
// whose envelope reports success=false.
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %v: %s", e.StatusCode, e.Err, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is [ErrRemote].
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
