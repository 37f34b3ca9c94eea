// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-field-sync/models"
)

const (
	fieldUpdatedAt = "updated_at"
	fieldItems     = "items"
)

// Resolve reconciles the local version of a record with the version the
// remote already holds. Neither input is modified.
//
// server_wins returns a copy of remote and client_wins a copy of local.
// merge lays local over remote, keeps the remote updated_at and unions the
// "items" arrays: remote elements first, then local elements the remote
// does not already contain. Any other strategy resolves as server_wins and
// reports ErrUnknownStrategy.
func Resolve(local, remote models.Record, strategy models.ConflictStrategy) (models.Record, error) {
	switch strategy {
	case models.StrategyServerWins:
		return copyRecord(remote), nil
	case models.StrategyClientWins:
		return copyRecord(local), nil
	case models.StrategyMerge:
		return merge(local, remote), nil
	default:
		return copyRecord(remote), fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

func copyRecord(r models.Record) models.Record {
	if r == nil {
		return models.Record{}
	}
	return r.Clone()
}

func merge(local, remote models.Record) models.Record {
	out := copyRecord(remote)
	for k, v := range local {
		out[k] = v
	}

	if updatedAt, ok := remote[fieldUpdatedAt]; ok {
		out[fieldUpdatedAt] = updatedAt
	}

	remoteItems, remoteOK := remote[fieldItems].([]any)
	localItems, localOK := local[fieldItems].([]any)
	if remoteOK && localOK {
		out[fieldItems] = unionItems(remoteItems, localItems)
	}
	return out
}

func unionItems(remote, local []any) []any {
	out := make([]any, 0, len(remote)+len(local))
	seen := make([][]byte, 0, len(remote)+len(local))

	add := func(v any) {
		key, err := json.Marshal(v)
		if err != nil {
			out = append(out, v)
			return
		}
		for _, s := range seen {
			if bytes.Equal(s, key) {
				return
			}
		}
		seen = append(seen, key)
		out = append(out, v)
	}

	for _, v := range remote {
		add(v)
	}
	for _, v := range local {
		add(v)
	}
	return out
}

// decodeRecord parses a JSON object. Numbers stay json.Number so that ids
// and counters survive the round trip unchanged.
func decodeRecord(raw json.RawMessage) (models.Record, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return models.Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rec models.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if rec == nil {
		rec = models.Record{}
	}
	return rec, nil
}
