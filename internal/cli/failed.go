// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-field-sync/models"
)

func newRetryFailedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retry-failed",
		Short: "Queue failed items for another attempt",
		Long: `Reset every failed item to pending with a fresh retry budget. The items are
uploaded by the next sync run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, logQuiet)
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.app.Services().Engine.RetryFailed(cmd.Context())
			if err != nil {
				return err
			}

			return opts.output(cmd.OutOrStdout(), models.AffectedResponse{Affected: n}, func(w io.Writer) {
				fmt.Fprintf(w, "%d failed item(s) queued again\n", n)
			})
		},
	}
}

func newClearFailedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failed",
		Short: "Delete failed items from the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, logQuiet)
			if err != nil {
				return err
			}
			defer s.close()

			n, err := s.app.Services().Engine.ClearFailed(cmd.Context())
			if err != nil {
				return err
			}

			return opts.output(cmd.OutOrStdout(), models.AffectedResponse{Affected: n}, func(w io.Writer) {
				fmt.Fprintf(w, "%d failed item(s) removed\n", n)
			})
		},
	}
}
