package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/config"
	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces readings to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured readings topic.
// Messages are keyed by sensor so a compacted topic keeps the latest reading
// of each sensor.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes a cycle's readings in a single
// WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(readings))
	for i := range readings {
		msg, err := serializeToMessage(readings[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write readings: %w", err)
	}
	w.logger.Debug("readings written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Reading into a Kafka message.
func serializeToMessage(r domain.Reading) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reading %s: %w", r.Sensor, err)
	}
	return kafkago.Message{
		Key:   []byte(r.Sensor),
		Value: data,
		Time:  r.EvaluatedAt,
		Headers: []kafkago.Header{
			{Key: "sensor", Value: []byte(r.Sensor)},
			{Key: "evaluated_at", Value: []byte(r.EvaluatedAt.Format(time.RFC3339))},
			{Key: "message_id", Value: []byte(uuid.NewString())},
		},
	}, nil
}
