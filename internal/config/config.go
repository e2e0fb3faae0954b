package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/google/uuid"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Wave         domain.WaveConfig
	ScanInterval time.Duration
	NodeID       string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka readings sink. Disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string

	// MQTT state publisher with Home Assistant discovery. Disabled when no broker is set.
	MQTTBroker          string
	MQTTClientID        string
	MQTTUsername        string
	MQTTPassword        string
	MQTTTopicPrefix     string
	MQTTDiscoveryPrefix string

	// Home Assistant REST API, used as the sun data source.
	HassURL       string
	HassToken     string
	HassTimeout   time.Duration
	HassCacheSize int
}

// KafkaEnabled reports whether readings should be written to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// MQTTEnabled reports whether readings should be published over MQTT.
func (c *Config) MQTTEnabled() bool { return c.MQTTBroker != "" }

// HassEnabled reports whether sun data should be fetched from Home Assistant.
func (c *Config) HassEnabled() bool { return c.HassURL != "" }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	settings, err := LoadWaveSettings()
	if err != nil {
		return nil, err
	}
	wave, err := domain.NewWaveConfig(settings)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	scanInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("SCAN_INTERVAL", "1m"))
	if err != nil || scanInterval <= 0 {
		return nil, errors.New("invalid SCAN_INTERVAL")
	}

	hassTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("HASS_TIMEOUT", "5s"))
	if err != nil || hassTimeout <= 0 {
		return nil, errors.New("invalid HASS_TIMEOUT")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		Wave:            wave,
		ScanInterval:    scanInterval,
		NodeID:          sharedcfg.EnvOrDefault("NODE_ID", "daily_temperature_wave"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "temperature-wave-readings"),

		MQTTBroker:          os.Getenv("MQTT_BROKER"),
		MQTTClientID:        sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "daily-temperature-wave-"+uuid.NewString()[:8]),
		MQTTUsername:        os.Getenv("MQTT_USERNAME"),
		MQTTPassword:        os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix:     sharedcfg.EnvOrDefault("MQTT_TOPIC_PREFIX", "daily_temperature_wave"),
		MQTTDiscoveryPrefix: sharedcfg.EnvOrDefault("MQTT_DISCOVERY_PREFIX", "homeassistant"),

		HassURL:       os.Getenv("HASS_URL"),
		HassToken:     os.Getenv("HASS_TOKEN"),
		HassTimeout:   hassTimeout,
		HassCacheSize: parseHassCacheSize(),
	}

	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.MQTTEnabled() && cfg.MQTTTopicPrefix == "" {
		return nil, errors.New("MQTT_TOPIC_PREFIX is required when MQTT_BROKER is set")
	}
	if cfg.HassEnabled() && cfg.HassToken == "" {
		return nil, errors.New("HASS_URL is set but HASS_TOKEN is not")
	}

	return cfg, nil
}

// LoadWaveSettings reads the raw wave settings from WAVE_* environment
// variables. Validation happens in domain.NewWaveConfig.
func LoadWaveSettings() (domain.WaveSettings, error) {
	s := domain.DefaultWaveSettings()

	s.MinTemp = sharedcfg.EnvOrDefault("WAVE_MIN_TEMP", s.MinTemp)
	s.MaxTemp = sharedcfg.EnvOrDefault("WAVE_MAX_TEMP", s.MaxTemp)
	s.StepResolution = sharedcfg.EnvOrDefault("WAVE_STEP_RESOLUTION", s.StepResolution)
	s.UnitSystem = sharedcfg.EnvOrDefault("WAVE_UNIT_SYSTEM", s.UnitSystem)
	s.SolarNoonOverride = os.Getenv("WAVE_SOLAR_NOON_OVERRIDE")
	s.Timezone = sharedcfg.EnvOrDefault("WAVE_TIMEZONE", s.Timezone)

	if v := os.Getenv("WAVE_SPREAD"); v != "" {
		spread, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.WaveSettings{}, fmt.Errorf("invalid WAVE_SPREAD: %w", err)
		}
		s.WaveSpread = spread
	}
	if v := os.Getenv("WAVE_STEP_INTERVAL"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return domain.WaveSettings{}, fmt.Errorf("invalid WAVE_STEP_INTERVAL: %w", err)
		}
		s.StepInterval = minutes
	}

	return s, nil
}

func parseHassCacheSize() int {
	if s := os.Getenv("HASS_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 7
}
