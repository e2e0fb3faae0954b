package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/couchcryptid/daily-temperature-wave/internal/observability"
)

// Sampler evaluates the wave against the live config. It implements Extractor
// and backs the HTTP API. The config can be swapped at runtime; each
// evaluation sees one consistent config.
type Sampler struct {
	cfg     atomic.Pointer[domain.WaveConfig]
	sun     domain.SunProvider
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSampler creates a Sampler. Pass a nil SunProvider to skip host sun data.
func NewSampler(cfg domain.WaveConfig, sun domain.SunProvider, logger *slog.Logger, metrics *observability.Metrics) *Sampler {
	s := &Sampler{sun: sun, logger: logger, metrics: metrics}
	s.cfg.Store(&cfg)
	return s
}

// Config returns the active wave config.
func (s *Sampler) Config() domain.WaveConfig {
	return *s.cfg.Load()
}

// UpdateConfig validates settings and, if valid, makes them the active config.
// An invalid update leaves the previous config in place.
func (s *Sampler) UpdateConfig(_ context.Context, settings domain.WaveSettings) (domain.WaveConfig, error) {
	cfg, err := domain.NewWaveConfig(settings)
	if err != nil {
		s.metrics.ConfigUpdates.WithLabelValues("rejected").Inc()
		s.logger.Warn("wave config update rejected", "error", err)
		return domain.WaveConfig{}, err
	}
	s.cfg.Store(&cfg)
	s.metrics.ConfigUpdates.WithLabelValues("applied").Inc()
	s.logger.Info("wave config updated",
		"min", cfg.Min.String(),
		"max", cfg.Max.String(),
		"spread", cfg.Spread,
		"unit_system", cfg.UnitSystem,
	)
	return cfg, nil
}

// Evaluator resolves solar noon for the active config.
func (s *Sampler) Evaluator(ctx context.Context) domain.Evaluator {
	cfg := s.Config()
	noon := domain.ResolveSolarNoon(ctx, cfg, s.sun, s.logger)
	return domain.NewEvaluator(cfg, noon)
}

// SnapshotAt evaluates every reading at t.
func (s *Sampler) SnapshotAt(ctx context.Context, t time.Time) domain.Snapshot {
	return s.Evaluator(ctx).Snapshot(t)
}

// Extract evaluates every reading at the current time and records the wave
// state in metrics.
func (s *Sampler) Extract(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	snap := s.SnapshotAt(ctx, domain.Now())

	s.metrics.SnapshotsComputed.Inc()
	s.metrics.CurrentTemperature.Set(snap.Current)
	rising := 0.0
	if snap.Rising {
		rising = 1
	}
	s.metrics.Rising.Set(rising)
	s.metrics.SolarNoonHours.Reset()
	s.metrics.SolarNoonHours.WithLabelValues(snap.SolarNoon.Source).Set(snap.SolarNoon.Time.Hours())

	return snap, nil
}
