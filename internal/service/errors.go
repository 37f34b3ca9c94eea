// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-field-sync/models"
)

var (
	// ErrUnknownType is matched by [UnknownTypeError].
	ErrUnknownType = errors.New("unknown sync item type")

	ErrInvalidPayload  = errors.New("invalid payload")
	ErrInvalidSettings = errors.New("invalid sync settings")
	ErrUnknownStrategy = errors.New("unknown conflict strategy")
)

// UnknownTypeError is returned when no upload handler is registered for a
// queued item type.
type UnknownTypeError struct {
	Type models.ItemType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownType, e.Type)
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}
