package main

import (
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/spf13/cobra"
)

type valueOutput struct {
	EvaluatedAt   time.Time        `json:"evaluated_at"`
	SolarNoon     domain.SolarNoon `json:"solar_noon"`
	HoursFromNoon float64          `json:"hours_from_noon"`
	Current       float64          `json:"current"`
	CurrentStep   float64          `json:"current_step"`
	Unit          string           `json:"unit"`
	Rising        bool             `json:"rising"`
}

func newValueCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "value",
		Short: "Print the wave temperature at a point in time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, at, err := opts.evaluator(cmd)
			if err != nil {
				return err
			}
			snap := e.Snapshot(at)
			return printJSON(cmd.OutOrStdout(), valueOutput{
				EvaluatedAt:   snap.EvaluatedAt,
				SolarNoon:     snap.SolarNoon,
				HoursFromNoon: snap.Visual.Current.HoursFromNoon,
				Current:       snap.Current,
				CurrentStep:   snap.CurrentStep,
				Unit:          domain.UnitSymbol(snap.Unit),
				Rising:        snap.Rising,
			})
		},
	}
}
