// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-field-sync/models"
)

const (
	MaxPhotoSize     = 5 << 20
	MaxSignatureSize = 1 << 20
)

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeSVG  = "image/svg+xml"
)

type mediaRule struct {
	maxSize int
	formats []string
}

var mediaRules = map[models.MediaKind]mediaRule{
	models.MediaKindPhoto:     {maxSize: MaxPhotoSize, formats: []string{MimeJPEG, MimePNG}},
	models.MediaKindSignature: {maxSize: MaxSignatureSize, formats: []string{MimePNG, MimeSVG}},
}

// DetectMediaType sniffs the content type of data. SVG documents are
// recognised by their root element since the standard sniffer reports them
// as XML or plain text.
func DetectMediaType(data []byte) string {
	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "text/") && looksLikeSVG(data) {
		return MimeSVG
	}
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	return detected
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// ValidateMedia checks size and sniffed format of a captured media file
// against the limits of its kind.
func ValidateMedia(kind models.MediaKind, data []byte) error {
	rule, ok := mediaRules[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidMediaKind, kind)
	}
	if len(data) == 0 {
		return ErrEmptyMedia
	}
	if len(data) > rule.maxSize {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrPayloadTooLarge, kind, len(data), rule.maxSize)
	}

	detected := DetectMediaType(data)
	for _, f := range rule.formats {
		if detected == f {
			return nil
		}
	}
	return fmt.Errorf("%w: %s as %s", ErrUnsupportedFormat, kind, detected)
}
