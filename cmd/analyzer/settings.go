package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and manage the analysis settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}
			defer cli.close()

			settings, err := cli.settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}
			defer cli.close()

			if _, err := cli.settings.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "settings reset to defaults")
			return nil
		},
	})

	return cmd
}
