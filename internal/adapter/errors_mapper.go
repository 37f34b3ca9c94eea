// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-field-sync/models"
)

// mapHTTPError converts a completed response into nil (2xx), a
// [ConflictError] (409) or a [RemoteError].
func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	if code == http.StatusConflict {
		var body models.ConflictBody
		_ = json.Unmarshal(resp.Body(), &body)
		return &ConflictError{Message: body.Message, Existing: body.Existing()}
	}

	var class error
	switch {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		class = ErrBadRequest
	case code == http.StatusUnauthorized:
		class = ErrUnauthorized
	case code == http.StatusForbidden:
		class = ErrForbidden
	case code == http.StatusNotFound:
		class = ErrNotFound
	case code >= http.StatusInternalServerError:
		class = ErrServer
	default:
		class = ErrUnexpectedStatus
	}

	return &RemoteError{StatusCode: code, Message: responseMessage(resp), Err: class}
}

// responseMessage prefers the envelope message over the raw body.
func responseMessage(resp *resty.Response) string {
	var env models.RemoteResponse
	if err := json.Unmarshal(resp.Body(), &env); err == nil && env.Message != "" {
		return env.Message
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		return http.StatusText(resp.StatusCode())
	}
	return body
}

// transportError wraps a resty error as [ErrConnectivity].
func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConnectivity, op, err)
}
