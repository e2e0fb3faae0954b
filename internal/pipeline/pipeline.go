package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/couchcryptid/daily-temperature-wave/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Extractor evaluates the wave for the current tick.
type Extractor interface {
	Extract(ctx context.Context) (domain.Snapshot, error)
}

// Transformer renders a snapshot into the readings handed to the sinks.
type Transformer interface {
	Transform(ctx context.Context, snap domain.Snapshot) ([]domain.Reading, error)
}

// BatchLoader publishes a batch of readings.
type BatchLoader interface {
	LoadBatch(ctx context.Context, readings []domain.Reading) error
}

// Pipeline orchestrates the sample-render-publish loop on a fixed interval.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	interval    time.Duration
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		interval:    interval,
	}
}

// WithClock replaces the clock driving the tick and backoff timers.
func (p *Pipeline) WithClock(c clockwork.Clock) *Pipeline {
	p.clock = c
	return p
}

// CheckReadiness returns nil once a cycle has been published, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any readings yet")
	}
	return nil
}

// Ready reports whether at least one cycle completed.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Run publishes one cycle immediately and then one per interval until the
// context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	backoff := initialBackoff
	for {
		if !p.processCycle(ctx, &backoff) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// processCycle runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processCycle(ctx context.Context, backoff *time.Duration) bool {
	start := p.clock.Now()

	snap, err := p.extractor.Extract(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract snapshot failed", "error", err)
		return true
	}

	readings, err := p.transformer.Transform(ctx, snap)
	if err != nil {
		p.logger.Warn("transform failed, skipping cycle", "error", err, "evaluated_at", snap.EvaluatedAt)
		return true
	}

	for {
		err := p.loader.LoadBatch(ctx, readings)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(readings))

		// A retry that would overlap the next tick publishes stale readings.
		if p.clock.Since(start)+*backoff >= p.interval {
			p.logger.Warn("dropping readings, next cycle due", "evaluated_at", snap.EvaluatedAt)
			return true
		}
		if !p.backoffOrStop(ctx, backoff) {
			return false
		}
	}

	*backoff = initialBackoff
	p.metrics.CycleDuration.Observe(p.clock.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Debug("cycle published",
		"evaluated_at", snap.EvaluatedAt,
		"current", snap.Current,
		"rising", snap.Rising,
		"readings", len(readings),
	)
	return true
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if !sleepWithContext(ctx, p.clock, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
