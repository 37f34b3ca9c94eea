// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-field-sync/internal/tui"
)

func newMonitorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run the sync agent with a terminal monitor",
		Long: `Run the sync agent and show live sync progress, queue and connectivity
state. Logs go to the configured log file only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, logFileOnly)
			if err != nil {
				return err
			}
			defer s.close()

			group, err := s.app.Workers()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			done := make(chan error, 1)
			go func() { done <- group.Run(ctx) }()

			uiErr := tui.New(s.app.Services().Engine, opts.buildInfo, s.logger).Run(ctx)
			cancel()

			return errors.Join(uiErr, <-done)
		},
	}
}
