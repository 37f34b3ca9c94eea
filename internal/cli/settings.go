// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-field-sync/models"
)

var errInvalidSetting = errors.New("invalid setting")

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the persisted sync settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd, logQuiet)
			if err != nil {
				return err
			}
			defer s.close()

			settings, err := s.app.Services().Engine.Settings(cmd.Context())
			if err != nil {
				return err
			}

			return opts.output(cmd.OutOrStdout(), settings, func(w io.Writer) {
				printSettings(w, settings)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set key=value...",
		Short: "Change sync settings",
		Long: `Change one or more persisted sync settings. Keys: autoSync, maxRetries,
batchSize, conflictStrategy (server_wins, client_wins, merge) and batchDelayMs.`,
		Example: "  fieldsync settings set batchSize=20 conflictStrategy=merge",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseSettingsPatch(args)
			if err != nil {
				return err
			}

			s, err := opts.openSession(cmd, logQuiet)
			if err != nil {
				return err
			}
			defer s.close()

			settings, err := s.app.Services().Engine.UpdateSettings(cmd.Context(), patch)
			if err != nil {
				return err
			}

			return opts.output(cmd.OutOrStdout(), settings, func(w io.Writer) {
				printSettings(w, settings)
			})
		},
	})

	return cmd
}

// parseSettingsPatch turns key=value arguments into a patch. Range checks
// are left to the settings store.
func parseSettingsPatch(args []string) (models.SettingsPatch, error) {
	var patch models.SettingsPatch

	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || v == "" {
			return models.SettingsPatch{}, fmt.Errorf("%w: %q is not key=value", errInvalidSetting, arg)
		}

		switch k {
		case "autoSync":
			b, err := strconv.ParseBool(v)
			if err != nil {
				return models.SettingsPatch{}, fmt.Errorf("%w: autoSync: %w", errInvalidSetting, err)
			}
			patch.AutoSync = &b
		case "maxRetries", "batchSize":
			n, err := strconv.Atoi(v)
			if err != nil {
				return models.SettingsPatch{}, fmt.Errorf("%w: %s: %w", errInvalidSetting, k, err)
			}
			if k == "maxRetries" {
				patch.MaxRetries = &n
			} else {
				patch.BatchSize = &n
			}
		case "conflictStrategy":
			strategy := models.ConflictStrategy(v)
			patch.ConflictStrategy = &strategy
		case "batchDelayMs":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return models.SettingsPatch{}, fmt.Errorf("%w: batchDelayMs: %w", errInvalidSetting, err)
			}
			patch.BatchDelayMS = &n
		default:
			return models.SettingsPatch{}, fmt.Errorf("%w: unknown key %q", errInvalidSetting, k)
		}
	}

	return patch, nil
}

func printSettings(w io.Writer, s models.SyncSettings) {
	fmt.Fprintf(w, "  autoSync:         %t\n", s.AutoSync)
	fmt.Fprintf(w, "  maxRetries:       %d\n", s.MaxRetries)
	fmt.Fprintf(w, "  batchSize:        %d\n", s.BatchSize)
	fmt.Fprintf(w, "  conflictStrategy: %s\n", s.ConflictStrategy)
	fmt.Fprintf(w, "  batchDelayMs:     %d\n", s.BatchDelayMS)
}
