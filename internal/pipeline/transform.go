package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
)

var errEmptySnapshot = errors.New("snapshot has no evaluation time")

// ReadingTransformer implements Transformer by expanding a snapshot into
// one reading per published sensor.
type ReadingTransformer struct {
	sensors []string
	logger  *slog.Logger
}

// NewTransformer creates a ReadingTransformer. With no sensor keys every
// sensor is published; otherwise only the listed ones, in publication order.
func NewTransformer(logger *slog.Logger, sensors ...string) *ReadingTransformer {
	return &ReadingTransformer{sensors: sensors, logger: logger}
}

func (t *ReadingTransformer) Transform(_ context.Context, snap domain.Snapshot) ([]domain.Reading, error) {
	if snap.EvaluatedAt.IsZero() {
		return nil, errEmptySnapshot
	}

	readings := snap.Readings()
	if len(t.sensors) == 0 {
		return readings, nil
	}

	filtered := readings[:0]
	for _, r := range readings {
		if slices.Contains(t.sensors, r.Sensor) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		t.logger.Warn("sensor filter matched nothing", "sensors", t.sensors)
	}
	return filtered, nil
}
