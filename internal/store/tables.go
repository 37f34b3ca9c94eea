// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/models"
)

type tableSpec struct {
	columns   map[string]bool
	remoteKey bool
}

func newTableSpec(remoteKey bool, columns ...string) tableSpec {
	spec := tableSpec{columns: map[string]bool{"id": true}, remoteKey: remoteKey}
	for _, c := range columns {
		spec.columns[c] = true
	}
	return spec
}

var tableSpecs = map[string]tableSpec{
	TableCachedTasks:   newTableSpec(true, "remote_id", "payload", "cached_at", "last_updated"),
	TableCachedSchools: newTableSpec(true, "remote_id", "payload", "cached_at", "last_updated"),
	TableCapturedProofs: newTableSpec(false,
		"task_id", "server_id", "payload", "sync_status", "retry_count", "last_attempt", "created_at", "updated_at"),
	TableCapturedAttendance: newTableSpec(false,
		"kind", "server_id", "payload", "validation", "sync_status", "retry_count", "last_attempt", "created_at", "updated_at"),
}

func specFor(table string) (tableSpec, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return tableSpec{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return spec, nil
}

// split validates record against the table and returns its columns in a
// stable order with their values. The id column is never written.
func (s tableSpec) split(record models.Record) ([]string, []any, error) {
	cols := make([]string, 0, len(record))
	for c := range record {
		if c == "id" {
			continue
		}
		if !s.columns[c] {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = normalizeValue(record[c])
	}
	return cols, vals, nil
}

func (s tableSpec) orderBy(clauses []string) ([]string, error) {
	for _, clause := range clauses {
		fields := strings.Fields(clause)
		if len(fields) == 0 || len(fields) > 2 || !s.columns[fields[0]] {
			return nil, fmt.Errorf("%w: order by %q", ErrUnknownColumn, clause)
		}
		if len(fields) == 2 {
			if dir := strings.ToUpper(fields[1]); dir != "ASC" && dir != "DESC" {
				return nil, fmt.Errorf("%w: order by %q", ErrUnknownColumn, clause)
			}
		}
	}
	return clauses, nil
}

// normalizeValue turns JSON documents into text so that TEXT columns hold
// the same representation on every backend.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.RawMessage:
		return string(val)
	case []byte:
		return string(val)
	case models.Record, map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return v
		}
		return string(b)
	}
	return v
}

type sqlTables struct {
	db     *DB
	logger *logger.Logger
}

// NewTables returns the generic record API over db.
func NewTables(db *DB, logger *logger.Logger) Tables {
	return &sqlTables{db: db, logger: logger}
}

func (t *sqlTables) UpsertByRemoteID(ctx context.Context, table, remoteID string, record models.Record) (int64, error) {
	log := logger.FromContext(ctx)

	spec, err := specFor(table)
	if err != nil {
		return 0, err
	}
	if !spec.remoteKey {
		return 0, fmt.Errorf("%w: %q", ErrNoRemoteKey, table)
	}

	rec := record.Clone()
	if rec == nil {
		rec = models.Record{}
	}
	rec["remote_id"] = remoteID

	cols, vals, err := spec.split(rec)
	if err != nil {
		return 0, err
	}

	updates := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != "remote_id" {
			updates = append(updates, c+" = excluded."+c)
		}
	}
	if len(updates) == 0 {
		return 0, fmt.Errorf("%w: nothing to upsert besides remote_id", ErrUnknownColumn)
	}

	q := t.db.builder.Insert(table).Columns(cols...).Values(vals...).
		Suffix("ON CONFLICT (remote_id) DO UPDATE SET " + strings.Join(updates, ", ") + " RETURNING id")

	id, err := t.db.insertReturningID(ctx, "upsert", table, q)
	if err != nil {
		log.Err(err).Str("func", "sqlTables.UpsertByRemoteID").Str("table", table).Str("remote_id", remoteID).
			Msg("failed to upsert record")
		return 0, err
	}
	return id, nil
}

func (t *sqlTables) Query(ctx context.Context, table string, pred sq.Sqlizer, orderBy ...string) ([]models.Record, error) {
	spec, err := specFor(table)
	if err != nil {
		return nil, err
	}
	order, err := spec.orderBy(orderBy)
	if err != nil {
		return nil, err
	}

	q := t.db.builder.Select("*").From(table)
	if pred != nil {
		q = q.Where(pred)
	}
	if len(order) > 0 {
		q = q.OrderBy(order...)
	}

	return t.selectRecords(ctx, "query", table, q)
}

func (t *sqlTables) Get(ctx context.Context, table string, localID int64) (models.Record, error) {
	if _, err := specFor(table); err != nil {
		return nil, err
	}

	records, err := t.selectRecords(ctx, "get", table,
		t.db.builder.Select("*").From(table).Where(sq.Eq{"id": localID}))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s id=%d: %w", table, localID, ErrNotFound)
	}
	return records[0], nil
}

func (t *sqlTables) Append(ctx context.Context, table string, record models.Record) (int64, error) {
	log := logger.FromContext(ctx)

	spec, err := specFor(table)
	if err != nil {
		return 0, err
	}
	cols, vals, err := spec.split(record)
	if err != nil {
		return 0, err
	}

	q := t.db.builder.Insert(table).Columns(cols...).Values(vals...).Suffix("RETURNING id")
	id, err := t.db.insertReturningID(ctx, "append", table, q)
	if err != nil {
		log.Err(err).Str("func", "sqlTables.Append").Str("table", table).Msg("failed to append record")
		return 0, err
	}
	return id, nil
}

func (t *sqlTables) UpdateFields(ctx context.Context, table string, localID int64, partial models.Record) error {
	spec, err := specFor(table)
	if err != nil {
		return err
	}
	cols, vals, err := spec.split(partial)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}

	q := t.db.builder.Update(table).Where(sq.Eq{"id": localID})
	for i, c := range cols {
		q = q.Set(c, vals[i])
	}

	n, err := t.db.exec(ctx, "update", table, q)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "sqlTables.UpdateFields").Str("table", table).
			Int64("id", localID).Msg("failed to update record")
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s id=%d: %w", table, localID, ErrNotFound)
	}
	return nil
}

func (t *sqlTables) DeleteWhere(ctx context.Context, table string, pred sq.Sqlizer) (int64, error) {
	if _, err := specFor(table); err != nil {
		return 0, err
	}
	if pred == nil {
		return 0, ErrEmptyPredicate
	}

	return t.db.exec(ctx, "delete", table, t.db.builder.Delete(table).Where(pred))
}

func (t *sqlTables) selectRecords(ctx context.Context, op, table string, q sq.SelectBuilder) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, t.db.storageError(op, table, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "sqlTables.selectRecords").Str("table", table).Msg("failed to query records")
		return nil, t.db.storageError(op, table, fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, t.db.storageError(op, table, err)
	}
	return records, nil
}

func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	var records []models.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		rec := make(models.Record, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = values[i]
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return records, nil
}
