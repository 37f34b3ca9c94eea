// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-field-sync/models"
)

// Field name constants used to restrict validation to specific fields.
const (
	FieldTaskID        = "task_id"
	FieldRecipientName = "recipient_name"
	FieldDeliveredAt   = "delivered_at"
	FieldItems         = "items"
	FieldCoordinates   = "coordinates"
	FieldStatus        = "status"
	FieldKind          = "kind"
	FieldTimestamp     = "timestamp"
	FieldValidation    = "validation"
	FieldMediaID       = "media_id"

	// FieldPrerequisite requires the server id of the parent proof.
	FieldPrerequisite = "prerequisite"

	FieldMediaKind = "media_kind"
	FieldMediaData = "media_data"
)

// PayloadValidator validates the typed payloads of queued items and
// captured media files.
type PayloadValidator struct{}

func NewPayloadValidator() Validator {
	return &PayloadValidator{}
}

func (v *PayloadValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.EPODPayload:
		return v.validateEPOD(value, fields...)
	case *models.EPODPayload:
		return v.validateEPOD(*value, fields...)

	case models.StatusUpdatePayload:
		return v.validateStatusUpdate(value, fields...)
	case *models.StatusUpdatePayload:
		return v.validateStatusUpdate(*value, fields...)

	case models.AttendancePayload:
		return v.validateAttendance(value, fields...)
	case *models.AttendancePayload:
		return v.validateAttendance(*value, fields...)

	case models.MediaPayload:
		return v.validateMediaPayload(value, fields...)
	case *models.MediaPayload:
		return v.validateMediaPayload(*value, fields...)

	case models.MediaFile:
		return v.validateMediaFile(value, fields...)
	case *models.MediaFile:
		return v.validateMediaFile(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// DecodeAndValidate unmarshals raw into T and validates it.
func DecodeAndValidate[T any](ctx context.Context, v Validator, raw json.RawMessage, fields ...string) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if err := v.Validate(ctx, out, fields...); err != nil {
		return out, err
	}
	return out, nil
}

func (v *PayloadValidator) validateEPOD(p models.EPODPayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTaskID, FieldRecipientName, FieldDeliveredAt, FieldItems, FieldCoordinates}
	}

	for _, f := range fields {
		switch f {
		case FieldTaskID:
			if p.TaskID == "" {
				return ErrInvalidTaskID
			}
		case FieldRecipientName:
			if p.RecipientName == "" {
				return ErrEmptyRecipient
			}
		case FieldDeliveredAt:
			if p.DeliveredAt.IsZero() {
				return ErrInvalidDeliveredAt
			}
		case FieldItems:
			for i, item := range p.Items {
				if item.MealType == "" || item.Portions < 0 {
					return fmt.Errorf("%w: item %d", ErrInvalidItems, i)
				}
			}
		case FieldCoordinates:
			if !validCoordinates(p.Latitude, p.Longitude) {
				return ErrInvalidCoordinates
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *PayloadValidator) validateStatusUpdate(p models.StatusUpdatePayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTaskID, FieldStatus}
	}

	for _, f := range fields {
		switch f {
		case FieldTaskID:
			if p.TaskID == "" {
				return ErrInvalidTaskID
			}
		case FieldStatus:
			if p.Status == "" {
				return ErrInvalidStatus
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *PayloadValidator) validateAttendance(p models.AttendancePayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldKind, FieldTimestamp, FieldCoordinates, FieldValidation}
	}

	for _, f := range fields {
		switch f {
		case FieldKind:
			if p.Kind != models.AttendanceCheckIn && p.Kind != models.AttendanceCheckOut {
				return fmt.Errorf("%w: %q", ErrInvalidKind, p.Kind)
			}
		case FieldTimestamp:
			if p.Timestamp.IsZero() {
				return ErrInvalidTimestamp
			}
		case FieldCoordinates:
			if !validCoordinates(p.Latitude, p.Longitude) {
				return ErrInvalidCoordinates
			}
		case FieldValidation:
			// the location heuristic's verdict is relayed as is; only its
			// presence is checked here
			if p.Validation.Method == "" {
				return ErrMissingLocationCheck
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *PayloadValidator) validateMediaPayload(p models.MediaPayload, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldMediaID, FieldTaskID, FieldPrerequisite}
	}

	for _, f := range fields {
		switch f {
		case FieldMediaID:
			if p.MediaID <= 0 {
				return ErrInvalidMediaID
			}
		case FieldTaskID:
			if p.TaskID == "" {
				return ErrInvalidTaskID
			}
		case FieldPrerequisite:
			if p.EPODServerID == "" {
				return ErrMissingPrerequisite
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *PayloadValidator) validateMediaFile(m models.MediaFile, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldMediaKind, FieldMediaData}
	}

	for _, f := range fields {
		switch f {
		case FieldMediaKind:
			if _, ok := mediaRules[m.Kind]; !ok {
				return fmt.Errorf("%w: %q", ErrInvalidMediaKind, m.Kind)
			}
		case FieldMediaData:
			if err := ValidateMedia(m.Kind, m.Data); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
