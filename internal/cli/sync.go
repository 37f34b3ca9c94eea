// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-field-sync/models"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload every eligible queued item once",
		Long: `Probe the remote API and, when it is reachable, run one sync pass over the
queue and print the outcome. Fails when the device is offline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, logQuiet)
			if err != nil {
				return err
			}
			defer s.close()

			result, err := s.app.SyncNow(cmd.Context())
			if err != nil {
				return err
			}

			return opts.output(cmd.OutOrStdout(), result, func(w io.Writer) {
				printRunResult(w, result)
			})
		},
	}
}

func printRunResult(w io.Writer, r models.RunResult) {
	if !r.Started && r.Reason != "" {
		fmt.Fprintf(w, "Sync not started: %s\n", r.Reason)
	}

	p := r.Progress
	fmt.Fprintf(w, "Run:       %s\n", valueOr(p.RunID, "-"))
	fmt.Fprintf(w, "Status:    %s\n", p.Status)
	fmt.Fprintf(w, "Total:     %d\n", p.Total)
	fmt.Fprintf(w, "Completed: %d\n", p.Completed)
	fmt.Fprintf(w, "Failed:    %d\n", p.Failed)
	fmt.Fprintf(w, "Skipped:   %d\n", p.Skipped)
	if p.Error != "" {
		fmt.Fprintf(w, "Error:     %s\n", p.Error)
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
