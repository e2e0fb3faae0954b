// Package mqtt publishes readings as Home Assistant MQTT entities.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/config"
	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = 1
	connectTimeout = 10 * time.Second
	quiesceMillis  = 250
)

// Publisher writes each reading to a retained state topic and announces
// the entities through Home Assistant MQTT discovery.
// It implements pipeline.BatchLoader.
type Publisher struct {
	client paho.Client
	topics topics
	logger *slog.Logger

	mu        sync.Mutex
	announced string // unit symbol the discovery configs were last published with
}

// NewPublisher connects to the configured broker. Discovery configs and the
// online marker are (re)published on every successful connect.
func NewPublisher(cfg *config.Config, logger *slog.Logger) (*Publisher, error) {
	t := topics{prefix: cfg.MQTTTopicPrefix, discovery: cfg.MQTTDiscoveryPrefix, nodeID: cfg.NodeID}
	p := &Publisher{topics: t, logger: logger}
	unit := domain.UnitSymbol(cfg.Wave.UnitSystem.DisplayUnit())

	opts := paho.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetWill(t.availability(), payloadOffline, qos, true).
		SetOnConnectHandler(func(paho.Client) {
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			if err := p.announce(ctx, p.announcedUnit(unit)); err != nil {
				logger.Error("mqtt discovery failed", "error", err)
			}
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timed out", cfg.MQTTBroker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.MQTTBroker, err)
	}
	logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "client_id", cfg.MQTTClientID)
	return p, nil
}

func newPublisher(client paho.Client, t topics, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, topics: t, logger: logger}
}

func (p *Publisher) announcedUnit(fallback string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.announced == "" {
		return fallback
	}
	return p.announced
}

// announce publishes a retained discovery config for every sensor, then
// marks the node online.
func (p *Publisher) announce(ctx context.Context, unitSymbol string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, d := range domain.Sensors {
		payload, err := p.topics.discoveryPayload(d, unitSymbol)
		if err != nil {
			return fmt.Errorf("build discovery config for %s: %w", d.Key, err)
		}
		if err := p.publish(ctx, p.topics.config(d), payload); err != nil {
			return err
		}
	}
	if err := p.publish(ctx, p.topics.availability(), []byte(payloadOnline)); err != nil {
		return err
	}
	p.announced = unitSymbol
	p.logger.Debug("mqtt discovery published", "sensors", len(domain.Sensors), "unit", unitSymbol)
	return nil
}

// LoadBatch publishes the state and attributes of each reading. When the
// display unit has changed since the last announcement the discovery
// configs are refreshed first.
func (p *Publisher) LoadBatch(ctx context.Context, readings []domain.Reading) error {
	if unit := displayUnit(readings); unit != "" && unit != p.announcedUnit("") {
		if err := p.announce(ctx, unit); err != nil {
			return err
		}
	}

	var errs []error
	for _, r := range readings {
		if err := p.publish(ctx, p.topics.state(r.Sensor), []byte(statePayload(r.State))); err != nil {
			errs = append(errs, err)
			continue
		}
		attrs, err := attributesPayload(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode attributes for %s: %w", r.Sensor, err))
			continue
		}
		if err := p.publish(ctx, p.topics.attributes(r.Sensor), attrs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, qos, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close marks the node offline and disconnects.
func (p *Publisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := p.publish(ctx, p.topics.availability(), []byte(payloadOffline))
	p.client.Disconnect(quiesceMillis)
	return err
}

func displayUnit(readings []domain.Reading) string {
	for _, r := range readings {
		if r.Unit != "" {
			return r.Unit
		}
	}
	return ""
}
