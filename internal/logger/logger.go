// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger provides a thin wrapper around zerolog.Logger that adds
// convenience constructors and context-aware helpers used throughout the
// sync engine.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, Fatal, etc.) are available directly on *Logger.
// Application code should pass *Logger by pointer and obtain request-scoped
// loggers via FromContext or FromRequest.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger

	closer io.Closer
}

func configureGlobals(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name() // return function name
	}
	zerolog.CallerFieldName = "func"
}

func newLogger(w io.Writer, role string) zerolog.Logger {
	return zerolog.New(w).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()
}

// NewLogger constructs a *Logger writing JSON to os.Stdout for the given
// role label. The global level is set to Debug.
func NewLogger(role string) *Logger {
	configureGlobals(zerolog.DebugLevel)
	return &Logger{Logger: newLogger(os.Stdout, role)}
}

// NewClientLogger constructs a *Logger from the log configuration.
//
// When cfg.File is set, entries go to a size-rotated file managed by
// lumberjack; the parent directory is created if needed and stderr is used
// when it cannot be. Without a file entries go to stderr so that command
// output on stdout stays parseable. An unknown level falls back to Info.
func NewClientLogger(cfg config.ClientLog) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	configureGlobals(level)

	role := cfg.Role
	if role == "" {
		role = "fieldsync"
	}

	if cfg.File == "" {
		return &Logger{Logger: newLogger(os.Stderr, role)}
	}

	if err = os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		l := &Logger{Logger: newLogger(os.Stderr, role)}
		l.Warn().Err(err).Str("file", cfg.File).Msg("cannot create log directory, logging to stderr")
		return l
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	return &Logger{Logger: newLogger(rotating, role), closer: rotating}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Nop returns a *Logger that discards all log output.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// GetChildLogger returns a new *Logger that inherits all fields of the
// receiver. The child logger can be enriched with additional context fields
// without affecting the parent logger.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{Logger: l.With().Logger()}
}

// WithRun returns a child logger tagged with a sync run id.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{Logger: l.With().Str("run_id", runID).Logger()}
}

// FromRequest extracts the zerolog.Logger stored in the request's context by
// zerolog's log.Ctx helper and returns it as a *Logger.
func FromRequest(r *http.Request) *Logger {
	return &Logger{Logger: *log.Ctx(r.Context())}
}

// FromContext extracts the zerolog.Logger stored in ctx by zerolog's log.Ctx
// helper and returns it as a *Logger.
//
// If no logger has been attached to ctx, zerolog returns its default
// context logger, so this function never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{Logger: *log.Ctx(ctx)}
}
