package mqtt

import (
	"encoding/json"
	"strconv"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
)

const (
	componentSensor       = "sensor"
	componentBinarySensor = "binary_sensor"

	payloadOnline  = "online"
	payloadOffline = "offline"
	payloadOn      = "ON"
	payloadOff     = "OFF"
	payloadUnknown = "unknown"
)

// topics builds every topic the publisher writes to.
type topics struct {
	prefix    string
	discovery string
	nodeID    string
}

func (t topics) availability() string { return t.prefix + "/status" }

func (t topics) state(sensor string) string { return t.prefix + "/" + sensor + "/state" }

func (t topics) attributes(sensor string) string { return t.prefix + "/" + sensor + "/attributes" }

func (t topics) config(d domain.SensorDescription) string {
	return t.discovery + "/" + component(d) + "/" + t.nodeID + "/" + d.Key + "/config"
}

func component(d domain.SensorDescription) string {
	if d.Binary {
		return componentBinarySensor
	}
	return componentSensor
}

type device struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// discoveryConfig is the Home Assistant MQTT discovery payload for one entity.
type discoveryConfig struct {
	Name                string `json:"name"`
	UniqueID            string `json:"unique_id"`
	ObjectID            string `json:"object_id"`
	StateTopic          string `json:"state_topic"`
	JSONAttributesTopic string `json:"json_attributes_topic"`
	AvailabilityTopic   string `json:"availability_topic"`
	Icon                string `json:"icon,omitempty"`
	DeviceClass         string `json:"device_class,omitempty"`
	StateClass          string `json:"state_class,omitempty"`
	UnitOfMeasurement   string `json:"unit_of_measurement,omitempty"`
	PayloadOn           string `json:"payload_on,omitempty"`
	PayloadOff          string `json:"payload_off,omitempty"`
	Device              device `json:"device"`
}

func (t topics) discoveryPayload(d domain.SensorDescription, unitSymbol string) ([]byte, error) {
	cfg := discoveryConfig{
		Name:                d.Name,
		UniqueID:            t.nodeID + "_" + d.Key,
		ObjectID:            t.nodeID + "_" + d.Key,
		StateTopic:          t.state(d.Key),
		JSONAttributesTopic: t.attributes(d.Key),
		AvailabilityTopic:   t.availability(),
		Icon:                d.Icon,
		Device: device{
			Identifiers:  []string{t.nodeID},
			Name:         "Daily Temperature Wave",
			Manufacturer: "couchcryptid",
			Model:        "daily-temperature-wave",
		},
	}
	if d.Binary {
		cfg.PayloadOn = payloadOn
		cfg.PayloadOff = payloadOff
	} else {
		cfg.DeviceClass = "temperature"
		cfg.StateClass = d.StateClass
		cfg.UnitOfMeasurement = unitSymbol
	}
	return json.Marshal(cfg)
}

// statePayload renders a reading's headline value the way Home Assistant
// expects it on a state topic.
func statePayload(state any) string {
	switch v := state.(type) {
	case nil:
		return payloadUnknown
	case bool:
		if v {
			return payloadOn
		}
		return payloadOff
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return payloadUnknown
		}
		return string(b)
	}
}

// attributesPayload is published separately from the state so series data
// is not subject to the 255 character state limit.
func attributesPayload(r domain.Reading) ([]byte, error) {
	attrs := make(map[string]any, len(r.Attributes)+1)
	for k, v := range r.Attributes {
		attrs[k] = v
	}
	attrs["evaluated_at"] = r.EvaluatedAt
	return json.Marshal(attrs)
}
