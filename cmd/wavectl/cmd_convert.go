package main

import (
	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/spf13/cobra"
)

type conversionOutput struct {
	Input  string  `json:"input"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Symbol string  `json:"symbol"`
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "convert VALUE UNIT",
		Short:   "Convert a temperature between Celsius and Fahrenheit",
		Example: "  wavectl convert 68F C",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := domain.ParseTemperature(args[0])
			if err != nil {
				return err
			}
			target, err := domain.ParseUnit(args[1])
			if err != nil {
				return err
			}
			out := domain.Convert(in, target)
			return printJSON(cmd.OutOrStdout(), conversionOutput{
				Input:  in.String(),
				Value:  out.Value,
				Unit:   string(out.Unit),
				Symbol: domain.UnitSymbol(out.Unit),
			})
		},
	}
}
