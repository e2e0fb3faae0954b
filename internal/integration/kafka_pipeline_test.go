//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/adapter/kafka"
	"github.com/couchcryptid/daily-temperature-wave/internal/config"
	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/couchcryptid/daily-temperature-wave/internal/observability"
	"github.com/couchcryptid/daily-temperature-wave/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testReadingsTopic = "test-readings"

// publishedMessage holds a deserialized message read from the readings topic.
type publishedMessage struct {
	Reading map[string]any
	Key     string
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("temperature-wave-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readPublished reads a single message from the consumer and deserializes it.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from readings topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var reading map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &reading), "unmarshal reading")

	return publishedMessage{Reading: reading, Key: string(msg.Key), Headers: headers}
}

func testSampler(t *testing.T) *pipeline.Sampler {
	t.Helper()
	settings := domain.DefaultWaveSettings()
	settings.Timezone = "UTC"
	cfg, err := domain.NewWaveConfig(settings)
	require.NoError(t, err)
	return pipeline.NewSampler(cfg, nil, discardLogger(), observability.NewMetricsForTesting())
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testReadingsTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaWriter verifies a rendered snapshot round-trips through Kafka with
// its key and headers intact.
func TestKafkaWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReadingsTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testReadingsTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	at := time.Date(2026, time.June, 21, 12, 0, 0, 0, time.UTC)
	snap := testSampler(t).SnapshotAt(ctx, at)
	readings, err := pipeline.NewTransformer(discardLogger(), domain.SensorCurrent).Transform(ctx, snap)
	require.NoError(t, err)
	require.NoError(t, writer.LoadBatch(ctx, readings))

	pm := readPublished(ctx, t, newConsumer(t, broker))
	assert.Equal(t, domain.SensorCurrent, pm.Key)
	assert.Equal(t, domain.SensorCurrent, pm.Headers["sensor"])
	assert.Equal(t, "2026-06-21T12:00:00Z", pm.Headers["evaluated_at"])
	assert.NotEmpty(t, pm.Headers["message_id"])
	assert.InDelta(t, 30.0, pm.Reading["state"], 1e-9, "solar noon is the daily maximum")
	assert.Equal(t, "°C", pm.Reading["unit"])
}

// TestPipelineEndToEnd wires Sampler, Transformer and Fanout(Writer) into the
// pipeline and verifies a full cycle of readings lands on the topic.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testReadingsTopic)

	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.June, 21, 15, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testReadingsTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	fanout := pipeline.NewFanout(discardLogger(), metrics, pipeline.Sink{Name: "kafka", Loader: writer})
	p := pipeline.New(testSampler(t), pipeline.NewTransformer(discardLogger()), fanout, discardLogger(), metrics, time.Hour)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newConsumer(t, broker)
	received := make(map[string]publishedMessage, len(domain.Sensors))
	for len(received) < len(domain.Sensors) {
		pm := readPublished(ctx, t, consumer)
		received[pm.Key] = pm
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	assert.True(t, p.Ready())

	for _, d := range domain.Sensors {
		pm, ok := received[d.Key]
		require.True(t, ok, "missing reading for %s", d.Key)
		assert.Equal(t, "2026-06-21T15:00:00Z", pm.Headers["evaluated_at"])
	}

	assert.InDelta(t, 28.54, received[domain.SensorCurrent].Reading["state"], 1e-9)
	assert.Equal(t, false, received[domain.SensorRising].Reading["state"])

	forecast := received[domain.SensorForecast24h].Reading["attributes"].(map[string]any)["forecast"].([]any)
	assert.Len(t, forecast, 24)
	week := received[domain.SensorForecast7d].Reading["attributes"].(map[string]any)["forecast"].([]any)
	assert.Len(t, week, 7)
}
