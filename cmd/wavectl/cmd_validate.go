package main

import (
	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/spf13/cobra"
)

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the wave settings and print them normalized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			cfg, err := domain.NewWaveConfig(s)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cfg.Settings())
		},
	}
}
