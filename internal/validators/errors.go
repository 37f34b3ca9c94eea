// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every payload or media rejection. Such
// errors are terminal for the current attempt.
var ErrValidation = errors.New("validation error")

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")
)

var (
	ErrPayloadTooLarge     = fmt.Errorf("%w: payload too large", ErrValidation)
	ErrUnsupportedFormat   = fmt.Errorf("%w: unsupported media format", ErrValidation)
	ErrEmptyMedia          = fmt.Errorf("%w: media is empty", ErrValidation)
	ErrMissingPrerequisite = fmt.Errorf("%w: missing prerequisite", ErrValidation)

	ErrInvalidTaskID        = fmt.Errorf("%w: task id is required", ErrValidation)
	ErrEmptyRecipient       = fmt.Errorf("%w: recipient name is required", ErrValidation)
	ErrInvalidDeliveredAt   = fmt.Errorf("%w: delivery time is required", ErrValidation)
	ErrInvalidItems         = fmt.Errorf("%w: delivered items are invalid", ErrValidation)
	ErrInvalidStatus        = fmt.Errorf("%w: task status is required", ErrValidation)
	ErrInvalidKind          = fmt.Errorf("%w: invalid attendance kind", ErrValidation)
	ErrInvalidTimestamp     = fmt.Errorf("%w: timestamp is required", ErrValidation)
	ErrInvalidMediaID       = fmt.Errorf("%w: media id is required", ErrValidation)
	ErrInvalidMediaKind     = fmt.Errorf("%w: invalid media kind", ErrValidation)
	ErrMalformedPayload     = fmt.Errorf("%w: malformed payload", ErrValidation)
	ErrInvalidCoordinates   = fmt.Errorf("%w: coordinates out of range", ErrValidation)
	ErrMissingLocationCheck = fmt.Errorf("%w: attendance validation method is required", ErrValidation)
)
