package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Sensor keys, one per published reading.
const (
	SensorCurrent         = "current"
	SensorCurrentStep     = "current_step"
	SensorForecast24h     = "forecast_24h"
	SensorForecast24hStep = "forecast_24h_step"
	SensorForecast7d      = "forecast_7d"
	SensorForecast7dStep  = "forecast_7d_step"
	SensorVisual          = "visual"
	SensorRising          = "rising"
)

// ErrUnknownSensor is returned when a reading is requested for a key not in Sensors.
var ErrUnknownSensor = errors.New("unknown sensor")

// SensorDescription describes how a reading is presented to the host platform.
type SensorDescription struct {
	Key        string
	Name       string
	Icon       string
	StateClass string // "measurement" or empty
	Binary     bool
}

// Sensors lists every reading in publication order.
var Sensors = []SensorDescription{
	{Key: SensorCurrent, Name: "Daily Temperature Wave Current", Icon: "mdi:thermometer", StateClass: "measurement"},
	{Key: SensorCurrentStep, Name: "Daily Temperature Wave Current (Step)", Icon: "mdi:thermometer", StateClass: "measurement"},
	{Key: SensorForecast24h, Name: "Daily Temperature Wave Forecast 24h", Icon: "mdi:weather-partly-cloudy"},
	{Key: SensorForecast24hStep, Name: "Daily Temperature Wave Forecast 24h (Step)", Icon: "mdi:weather-partly-cloudy"},
	{Key: SensorForecast7d, Name: "Daily Temperature Wave Forecast 7d", Icon: "mdi:weather-partly-cloudy"},
	{Key: SensorForecast7dStep, Name: "Daily Temperature Wave Forecast 7d (Step)", Icon: "mdi:weather-partly-cloudy"},
	{Key: SensorVisual, Name: "Daily Temperature Wave Visual", Icon: "mdi:chart-line"},
	{Key: SensorRising, Name: "Daily Temperature Wave Rising", Icon: "mdi:arrow-up", Binary: true},
}

// DescribeSensor looks up a sensor by key.
func DescribeSensor(key string) (SensorDescription, bool) {
	for _, d := range Sensors {
		if d.Key == key {
			return d, true
		}
	}
	return SensorDescription{}, false
}

// Snapshot holds every derived reading for a single evaluation instant.
type Snapshot struct {
	EvaluatedAt     time.Time       `json:"evaluated_at"`
	Unit            Unit            `json:"unit"`
	SolarNoon       SolarNoon       `json:"solar_noon"`
	Current         float64         `json:"current"`
	CurrentStep     float64         `json:"current_step"`
	Rising          bool            `json:"rising"`
	Forecast24h     []ForecastPoint `json:"forecast_24h"`
	Forecast24hStep []ForecastPoint `json:"forecast_24h_step"`
	Forecast7d      []DailyForecast `json:"forecast_7d"`
	Forecast7dStep  []DailyForecast `json:"forecast_7d_step"`
	Visual          Curve           `json:"visual"`
}

// Snapshot evaluates every reading at t.
func (e Evaluator) Snapshot(t time.Time) Snapshot {
	t = e.local(t)
	return Snapshot{
		EvaluatedAt:     t,
		Unit:            e.cfg.UnitSystem.DisplayUnit(),
		SolarNoon:       e.noon,
		Current:         round2(e.Current(t)),
		CurrentStep:     round2(e.CurrentStep(t)),
		Rising:          e.Rising(t),
		Forecast24h:     e.Forecast24h(t, false),
		Forecast24hStep: e.Forecast24h(t, true),
		Forecast7d:      e.Forecast7d(t, false),
		Forecast7dStep:  e.Forecast7d(t, true),
		Visual:          e.Curve(t),
	}
}

// Reading is one sensor's state as published to the host platform.
// Forecast and curve readings carry their series in Attributes; State is
// the headline value.
type Reading struct {
	Sensor      string         `json:"sensor"`
	State       any            `json:"state"`
	Unit        string         `json:"unit,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	EvaluatedAt time.Time      `json:"evaluated_at"`
}

// Readings expands the snapshot into one Reading per entry in Sensors.
func (s Snapshot) Readings() []Reading {
	out := make([]Reading, 0, len(Sensors))
	for _, d := range Sensors {
		r, _ := s.Reading(d.Key)
		out = append(out, r)
	}
	return out
}

// Reading returns the reading for a single sensor key.
func (s Snapshot) Reading(key string) (Reading, error) {
	r := Reading{Sensor: key, Unit: UnitSymbol(s.Unit), EvaluatedAt: s.EvaluatedAt}
	if d, ok := DescribeSensor(key); ok {
		r.Icon = d.Icon
	}

	switch key {
	case SensorCurrent:
		r.State = s.Current
	case SensorCurrentStep:
		r.State = s.CurrentStep
	case SensorForecast24h, SensorForecast24hStep:
		series := s.Forecast24h
		if key == SensorForecast24hStep {
			series = s.Forecast24hStep
		}
		r.State = headline24h(series)
		r.Attributes = map[string]any{"forecast": series}
	case SensorForecast7d, SensorForecast7dStep:
		series := s.Forecast7d
		if key == SensorForecast7dStep {
			series = s.Forecast7dStep
		}
		r.State = headline7d(series)
		r.Attributes = map[string]any{"forecast": series}
	case SensorVisual:
		r.State = s.Visual.Current.Temp
		r.Attributes = map[string]any{
			"points":            s.Visual.Points,
			"current_position":  s.Visual.Current,
			"solar_noon":        s.Visual.SolarNoon,
			"temperature_range": s.Visual.Range,
			"summary":           s.Visual.Summary(),
		}
	case SensorRising:
		r.State = s.Rising
		r.Unit = ""
		r.Icon = "mdi:arrow-down"
		if s.Rising {
			r.Icon = "mdi:arrow-up"
		}
		r.Attributes = map[string]any{
			"solar_noon":        s.SolarNoon.Time.String(),
			"solar_noon_source": s.SolarNoon.Source,
		}
	default:
		return Reading{}, fmt.Errorf("%w: %q", ErrUnknownSensor, key)
	}
	return r, nil
}

// headline24h is the first (current-hour) temperature of the short-range forecast.
func headline24h(series []ForecastPoint) any {
	if len(series) == 0 {
		return nil
	}
	return series[0].Temperature
}

// headline7d is the highest daily maximum of the medium-range forecast.
func headline7d(series []DailyForecast) any {
	if len(series) == 0 {
		return nil
	}
	hi := math.Inf(-1)
	for _, d := range series {
		hi = max(hi, d.Max)
	}
	return hi
}
