// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-field-sync/models"
)

const defaultListLimit = 50

func newQueueCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List queued items in upload order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, logQuiet)
			if err != nil {
				return err
			}
			defer s.close()

			items, err := s.app.Services().Engine.QueueItems(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if items == nil {
				items = []models.SyncQueueItem{}
			}

			return opts.output(cmd.OutOrStdout(), items, func(w io.Writer) {
				printQueue(w, items)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "Maximum number of items to list")

	return cmd
}

func printQueue(w io.Writer, items []models.SyncQueueItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Queue is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tPRIORITY\tRETRIES\tCREATED\tERROR")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			it.ID, it.Type, it.Status, it.Priority, it.RetryCount,
			it.CreatedAt.Format(time.RFC3339), it.ErrorMessage)
	}
	_ = tw.Flush()
}

func newLogCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent sync activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, logQuiet)
			if err != nil {
				return err
			}
			defer s.close()

			entries, err := s.app.Services().Engine.RecentLog(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []models.SyncLogEntry{}
			}

			return opts.output(cmd.OutOrStdout(), entries, func(w io.Writer) {
				printLog(w, entries)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "Maximum number of entries to show")

	return cmd
}

func printLog(w io.Writer, entries []models.SyncLogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No sync activity recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRUN\tITEM\tTYPE\tACTION\tDURATION\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%dms\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.RunID, e.QueueItemID, e.ItemType,
			e.Action, e.DurationMS, e.Message)
	}
	_ = tw.Flush()
}
