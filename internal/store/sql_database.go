// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
	"github.com/MKhiriev/go-field-sync/migrations"
)

// DB is the shared database handle of all repositories. It carries the
// dialect-specific statement builder and error classifier.
type DB struct {
	*sql.DB
	dialect            string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

func newDB(conn *sql.DB, dialect string, classifier ErrorClassificator, log *logger.Logger) *DB {
	var placeholder sq.PlaceholderFormat = sq.Question
	if dialect == migrations.DialectPostgres {
		placeholder = sq.Dollar
	}

	return &DB{
		DB:                 conn,
		dialect:            dialect,
		builder:            sq.StatementBuilder.PlaceholderFormat(placeholder),
		errorClassificator: classifier,
		logger:             log,
	}
}

// NewDB opens the local database. DSNs with the postgres:// or
// postgresql:// scheme go to PostgreSQL; anything else is a SQLite file.
func NewDB(ctx context.Context, cfg config.ClientDB, log *logger.Logger) (*DB, error) {
	if isPostgresDSN(cfg.DSN) {
		return NewConnectPostgres(ctx, cfg, log)
	}
	return NewConnectSQLite(ctx, cfg, log)
}

func isPostgresDSN(dsn string) bool {
	dsn = strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Dialect returns the migration dialect of the connection.
func (db *DB) Dialect() string {
	return db.dialect
}

// Migrate applies the embedded schema for the connection's dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

// storageError wraps err into a [StorageError] classified by the dialect.
func (db *DB) storageError(op, table string, err error) error {
	retryable := db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable
	return &StorageError{Op: op, Table: table, Retryable: retryable, Err: err}
}

// exec runs a built statement and returns the number of affected rows.
func (db *DB) exec(ctx context.Context, op, table string, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, db.storageError(op, table, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, db.storageError(op, table, fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, db.storageError(op, table, fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}
	return n, nil
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func (db *DB) insertReturningID(ctx context.Context, op, table string, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, db.storageError(op, table, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err))
	}

	var id int64
	if err = db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, db.storageError(op, table, fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}
	return id, nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullableMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}
