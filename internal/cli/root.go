// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-field-sync/internal/config"
	"github.com/MKhiriev/go-field-sync/models"
)

const (
	groupAgent   = "agent"
	groupQueue   = "queue"
	groupTooling = "tooling"
)

// rootOptions is the state shared by every subcommand.
type rootOptions struct {
	jsonOutput bool
	buildInfo  models.AppBuildInfo
}

// NewRootCommand builds the fieldsync command tree.
func NewRootCommand(buildInfo models.AppBuildInfo) *cobra.Command {
	opts := &rootOptions{buildInfo: buildInfo}

	rootCmd := &cobra.Command{
		Use:     "fieldsync",
		Version: buildInfo.Version,
		Short:   "Offline-first sync agent for field devices",
		Long: `fieldsync keeps proof-of-delivery captures, task status updates and
attendance records in a local queue and uploads them to the field operations
API whenever the device is online.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupAgent, Title: "Agent:"},
		&cobra.Group{ID: groupQueue, Title: "Queue:"},
		&cobra.Group{ID: groupTooling, Title: "Tooling:"},
	)

	for _, cmd := range []*cobra.Command{newRunCmd(opts), newMonitorCmd(opts), newSyncCmd(opts)} {
		cmd.GroupID = groupAgent
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		newStatusCmd(opts),
		newQueueCmd(opts),
		newLogCmd(opts),
		newRetryFailedCmd(opts),
		newClearFailedCmd(opts),
		newSettingsCmd(opts),
	} {
		cmd.GroupID = groupQueue
		rootCmd.AddCommand(cmd)
	}

	versionCmd := newVersionCmd(opts)
	versionCmd.GroupID = groupTooling
	rootCmd.AddCommand(versionCmd)
	rootCmd.SetHelpCommandGroupID(groupTooling)

	return rootCmd
}

// Execute runs the command line with build metadata injected at link time.
// The command context is cancelled on SIGTERM, SIGINT or SIGQUIT.
func Execute(buildInfo models.AppBuildInfo) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	return NewRootCommand(buildInfo).ExecuteContext(ctx)
}
