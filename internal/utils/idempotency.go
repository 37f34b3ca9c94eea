// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// IdempotencyKey derives the Idempotency-Key header value of an upload from
// the item type and its payload. Replaying the same item yields the same
// key, so the remote can drop duplicates after a lost response.
func IdempotencyKey(itemType string, payload []byte) string {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	h.Write([]byte(itemType))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
