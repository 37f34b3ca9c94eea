// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-field-sync/models"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue, settings and last sync time",
		Long: `Display the local queue counters, the persisted sync settings and the time
of the last successful sync. The remote API is not contacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, logQuiet)
			if err != nil {
				return err
			}
			defer s.close()

			status, err := s.app.Services().Engine.Status(cmd.Context())
			if err != nil {
				return err
			}

			return opts.output(cmd.OutOrStdout(), status, func(w io.Writer) {
				printStatus(w, status)
			})
		},
	}
}

func printStatus(w io.Writer, st models.EngineStatus) {
	lastSync := "never"
	if st.LastSyncTime != nil {
		lastSync = st.LastSyncTime.Format(time.RFC3339)
	}

	fmt.Fprintf(w, "Pending:   %d\n", st.Queue.Pending)
	fmt.Fprintf(w, "Failed:    %d\n", st.Queue.Failed)
	fmt.Fprintf(w, "Total:     %d\n", st.Queue.Total)
	fmt.Fprintf(w, "Last sync: %s\n", lastSync)
	fmt.Fprintf(w, "\nSettings:\n")
	printSettings(w, st.Settings)
}
