// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sync agent until interrupted",
		Long: `Run the sync agent in the foreground: connectivity polling, periodic sync,
log and cache maintenance, the settings file watcher and, when an address is
configured, the local control API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, logConfigured)
			if err != nil {
				return err
			}
			defer s.close()

			s.logger.Info().Str("func", "cli.run").
				Str("version", opts.buildInfo.Version).
				Str("commit", opts.buildInfo.Commit).
				Msg("starting sync agent")

			return s.app.Run(cmd.Context())
		},
	}
}
