package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/couchcryptid/daily-temperature-wave/internal/observability"
)

// Sink is a named BatchLoader. The name labels metrics and log lines.
type Sink struct {
	Name   string
	Loader BatchLoader
}

// Fanout implements BatchLoader by publishing every batch to each sink.
// One failing sink does not stop delivery to the others.
type Fanout struct {
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFanout creates a Fanout. With no sinks LoadBatch is a no-op.
func NewFanout(logger *slog.Logger, metrics *observability.Metrics, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, logger: logger, metrics: metrics}
}

func (f *Fanout) LoadBatch(ctx context.Context, readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	var errs []error
	for _, s := range f.sinks {
		if err := s.Loader.LoadBatch(ctx, readings); err != nil {
			f.metrics.PublishErrors.WithLabelValues(s.Name).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		f.metrics.ReadingsPublished.WithLabelValues(s.Name).Add(float64(len(readings)))
		f.logger.Debug("readings published", "sink", s.Name, "count", len(readings))
	}
	return errors.Join(errs...)
}
