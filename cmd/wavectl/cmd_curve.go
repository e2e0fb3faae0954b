package main

import (
	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/spf13/cobra"
)

type curveOutput struct {
	domain.Curve
	Summary domain.CurveSummary `json:"summary"`
}

func newCurveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "curve",
		Short: "Print the solar-day curve and the current position on it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, at, err := opts.evaluator(cmd)
			if err != nil {
				return err
			}
			c := e.Curve(at)
			return printJSON(cmd.OutOrStdout(), curveOutput{Curve: c, Summary: c.Summary()})
		},
	}
}
