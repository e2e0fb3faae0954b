package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/adapter/hass"
	httpadapter "github.com/couchcryptid/daily-temperature-wave/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/daily-temperature-wave/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/daily-temperature-wave/internal/adapter/mqtt"
	"github.com/couchcryptid/daily-temperature-wave/internal/config"
	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/couchcryptid/daily-temperature-wave/internal/observability"
	"github.com/couchcryptid/daily-temperature-wave/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Sun data source (feature-flagged via HASS_URL / HASS_TOKEN). The cache
	// follows the timezone of the live wave config.
	var sampler *pipeline.Sampler
	var sun domain.SunProvider
	if cfg.HassEnabled() {
		client := hass.NewClient(cfg.HassURL, cfg.HassToken, cfg.HassTimeout, metrics, logger)
		zone := func() *time.Location { return sampler.Config().Location }
		sun = hass.NewCachedSunProvider(client, cfg.HassCacheSize, zone, metrics)
		logger.Info("home assistant sun data enabled", "url", cfg.HassURL, "cache_size", cfg.HassCacheSize)
	} else {
		logger.Info("home assistant sun data disabled, using override or wall clock noon")
	}

	var sinks []pipeline.Sink
	var closers []func() error

	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, pipeline.Sink{Name: "kafka", Loader: writer})
		closers = append(closers, writer.Close)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.MQTTEnabled() {
		publisher, err := mqttadapter.NewPublisher(cfg, logger)
		if err != nil {
			logger.Error("failed to connect mqtt", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, pipeline.Sink{Name: "mqtt", Loader: publisher})
		closers = append(closers, publisher.Close)
	}
	if len(sinks) == 0 {
		logger.Warn("no sinks configured, readings are only served over http")
	}

	sampler = pipeline.NewSampler(cfg.Wave, sun, logger, metrics)
	transformer := pipeline.NewTransformer(logger)
	fanout := pipeline.NewFanout(logger, metrics, sinks...)

	p := pipeline.New(sampler, transformer, fanout, logger, metrics, cfg.ScanInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, sampler, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start wave pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, closeSink := range closers {
		if err := closeSink(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
