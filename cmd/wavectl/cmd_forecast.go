package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newForecastCmd(opts *options) *cobra.Command {
	var (
		horizon  string
		stepwise bool
	)
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print the hourly (24h) or daily (7d) forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, at, err := opts.evaluator(cmd)
			if err != nil {
				return err
			}
			switch horizon {
			case "24h":
				return printJSON(cmd.OutOrStdout(), e.Forecast24h(at, stepwise))
			case "7d":
				return printJSON(cmd.OutOrStdout(), e.Forecast7d(at, stepwise))
			default:
				return fmt.Errorf("invalid --range %q: want 24h or 7d", horizon)
			}
		},
	}
	cmd.Flags().StringVar(&horizon, "range", "24h", "forecast range: 24h or 7d")
	cmd.Flags().BoolVar(&stepwise, "stepwise", false, "quantize time and temperature")
	return cmd
}
