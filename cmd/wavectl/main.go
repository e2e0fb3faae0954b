// Command wavectl evaluates the daily temperature wave from the command line.
// Settings come from WAVE_* environment variables (or a .env file) and can be
// overridden per flag. Every subcommand prints JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/config"
	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	minTemp  string
	maxTemp  string
	spread   float64
	step     string
	interval int
	units    string
	noon     string
	timezone string
	at       string
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "wavectl",
		Short: "Evaluate the daily temperature wave",
		Long: `wavectl evaluates a smooth daily temperature curve that peaks at solar
noon and bottoms out twelve hours later.`,
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.minTemp, "min", "", "daily minimum, e.g. 20C or 68F")
	f.StringVar(&opts.maxTemp, "max", "", "daily maximum, e.g. 30C or 86F")
	f.Float64Var(&opts.spread, "spread", 0, "wave spread, 0.1 to 5")
	f.StringVar(&opts.step, "step", "", "quantization step, e.g. 1F or 0.5C")
	f.IntVar(&opts.interval, "interval", 0, "quantization interval in minutes, 1 to 120")
	f.StringVar(&opts.units, "units", "", "unit system: metric or imperial")
	f.StringVar(&opts.noon, "noon", "", "solar noon override as HH:MM")
	f.StringVar(&opts.timezone, "tz", "", "IANA timezone the wave is evaluated in")
	f.StringVar(&opts.at, "at", "", "evaluation time as RFC3339 (default now)")

	root.AddCommand(
		newValueCmd(opts),
		newForecastCmd(opts),
		newCurveCmd(opts),
		newConvertCmd(),
		newValidateCmd(opts),
	)
	return root
}

// settings reads WAVE_* settings and applies any flags set on the command line.
func (o *options) settings(cmd *cobra.Command) (domain.WaveSettings, error) {
	s, err := config.LoadWaveSettings()
	if err != nil {
		return domain.WaveSettings{}, err
	}

	flags := cmd.Flags()
	overlay := map[string]func(){
		"min":      func() { s.MinTemp = o.minTemp },
		"max":      func() { s.MaxTemp = o.maxTemp },
		"spread":   func() { s.WaveSpread = o.spread },
		"step":     func() { s.StepResolution = o.step },
		"interval": func() { s.StepInterval = o.interval },
		"units":    func() { s.UnitSystem = o.units },
		"noon":     func() { s.SolarNoonOverride = o.noon },
		"tz":       func() { s.Timezone = o.timezone },
	}
	for name, apply := range overlay {
		if flags.Changed(name) {
			apply()
		}
	}
	return s, nil
}

// evaluator validates the settings and resolves solar noon from the override
// or wall clock. wavectl never queries a sun provider.
func (o *options) evaluator(cmd *cobra.Command) (domain.Evaluator, time.Time, error) {
	s, err := o.settings(cmd)
	if err != nil {
		return domain.Evaluator{}, time.Time{}, err
	}
	cfg, err := domain.NewWaveConfig(s)
	if err != nil {
		return domain.Evaluator{}, time.Time{}, err
	}

	at := domain.Now()
	if o.at != "" {
		at, err = time.Parse(time.RFC3339, o.at)
		if err != nil {
			return domain.Evaluator{}, time.Time{}, fmt.Errorf("invalid --at: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	noon := domain.ResolveSolarNoon(cmd.Context(), cfg, nil, logger)
	return domain.NewEvaluator(cfg, noon), at, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
