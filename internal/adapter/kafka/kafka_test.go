package kafka

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/config"
	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, time.June, 21, 15, 10, 0, 0, time.UTC)
	reading := domain.Reading{
		Sensor:      domain.SensorCurrent,
		State:       27.41,
		Unit:        "°C",
		Icon:        "mdi:thermometer",
		EvaluatedAt: now,
	}

	msg, err := serializeToMessage(reading)
	require.NoError(t, err)

	assert.Equal(t, []byte("current"), msg.Key)
	assert.Equal(t, now, msg.Time)
	assert.JSONEq(t, `{
		"sensor": "current",
		"state": 27.41,
		"unit": "°C",
		"icon": "mdi:thermometer",
		"evaluated_at": "2026-06-21T15:10:00Z"
	}`, string(msg.Value))

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "sensor", msg.Headers[0].Key)
	assert.Equal(t, []byte("current"), msg.Headers[0].Value)
	assert.Equal(t, "evaluated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
	assert.Equal(t, "message_id", msg.Headers[2].Key)
	_, err = uuid.Parse(string(msg.Headers[2].Value))
	assert.NoError(t, err, "message_id should be a UUID")
}

func TestSerializeToMessage_UniqueIDs(t *testing.T) {
	r := domain.Reading{Sensor: domain.SensorRising, State: true}
	a, err := serializeToMessage(r)
	require.NoError(t, err)
	b, err := serializeToMessage(r)
	require.NoError(t, err)
	assert.NotEqual(t, a.Headers[2].Value, b.Headers[2].Value)
}

func TestSerializeToMessage_Unencodable(t *testing.T) {
	_, err := serializeToMessage(domain.Reading{Sensor: domain.SensorCurrent, State: math.NaN()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serialize reading current")
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"b1:9092", "b2:9092"}, KafkaTopic: "readings"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "readings", w.writer.Topic)
	assert.IsType(t, &kafkago.Hash{}, w.writer.Balancer)
	assert.Equal(t, kafkago.RequireAll, w.writer.RequiredAcks)
}

func TestWriter_LoadBatch_Empty(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"unreachable:9092"}, KafkaTopic: "readings"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.NoError(t, w.LoadBatch(context.Background(), nil), "empty batch never touches the broker")
}
