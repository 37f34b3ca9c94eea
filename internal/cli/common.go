// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-field-sync/internal/client"
	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/internal/logger"
)

// logMode selects how a command logs when no level is given on the
// command line.
type logMode int

const (
	// logConfigured keeps the configured level.
	logConfigured logMode = iota
	// logQuiet raises the level to warn so that one-shot output stays clean.
	logQuiet
	// logFileOnly discards entries unless a log file is configured.
	logFileOnly
)

// session is an opened application and the logger it writes to.
type session struct {
	app    *client.App
	logger *logger.Logger
}

func (o *rootOptions) openSession(cmd *cobra.Command, mode logMode) (*session, error) {
	cfg, err := config.GetClientConfig(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := newCommandLogger(cmd, cfg.Log, mode)

	app, err := client.NewApp(cmd.Context(), cfg, o.buildInfo, log)
	if err != nil {
		_ = log.Close()
		return nil, err
	}

	return &session{app: app, logger: log}, nil
}

func (s *session) close() {
	if err := s.app.Close(); err != nil {
		s.logger.Err(err).Str("func", "session.close").Msg("error closing application")
	}
	_ = s.logger.Close()
}

func newCommandLogger(cmd *cobra.Command, cfg config.ClientLog, mode logMode) *logger.Logger {
	explicitLevel := cmd.Flags().Changed("log-level")

	switch mode {
	case logQuiet:
		if !explicitLevel {
			cfg.Level = "warn"
		}
	case logFileOnly:
		if cfg.File == "" {
			return logger.Nop()
		}
	}
	return logger.NewClientLogger(cfg)
}

// output writes v as indented JSON when --json is set and calls text
// otherwise.
func (o *rootOptions) output(w io.Writer, v any, text func(w io.Writer)) error {
	if o.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
