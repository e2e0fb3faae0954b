package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Wave configuration bounds.
const (
	MinWaveSpread   = 0.1
	MaxWaveSpread   = 5.0
	MinStepInterval = 1 * time.Minute
	MaxStepInterval = 120 * time.Minute
)

// ErrInvalidConfig wraps every wave configuration validation failure.
var ErrInvalidConfig = errors.New("invalid wave config")

// UnitSystem selects the unit readings are reported in.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// DisplayUnit maps the unit system to the unit readings are converted to.
func (u UnitSystem) DisplayUnit() Unit {
	if u == Imperial {
		return Fahrenheit
	}
	return Celsius
}

// ParseUnitSystem accepts "metric" or "imperial" in any case.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch UnitSystem(strings.ToLower(strings.TrimSpace(s))) {
	case Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	default:
		return "", fmt.Errorf("unknown unit system %q", s)
	}
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// WallClockNoon is the fallback solar noon.
var WallClockNoon = TimeOfDay{Hour: 12}

// ParseTimeOfDay parses "HH:MM" in 24-hour notation.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("time of day %q: expected HH:MM", s)
	}
	hour, errH := strconv.Atoi(hh)
	minute, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q: out of range", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Hours returns the time of day as fractional hours since midnight.
func (t TimeOfDay) Hours() float64 {
	return float64(t.Hour) + float64(t.Minute)/60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// WaveSettings is the unvalidated, string-typed form of a wave configuration
// as it arrives from environment variables, flags or the HTTP API.
type WaveSettings struct {
	MinTemp           string  `json:"min_temp"`
	MaxTemp           string  `json:"max_temp"`
	WaveSpread        float64 `json:"wave_spread"`
	StepResolution    string  `json:"step_resolution"`
	StepInterval      int     `json:"step_interval"` // minutes
	UnitSystem        string  `json:"unit_system"`
	SolarNoonOverride string  `json:"solar_noon_override,omitempty"`
	Timezone          string  `json:"timezone,omitempty"`
}

// DefaultWaveSettings mirrors the defaults offered to users when the wave is first set up.
func DefaultWaveSettings() WaveSettings {
	return WaveSettings{
		MinTemp:        "20C",
		MaxTemp:        "30C",
		WaveSpread:     1.0,
		StepResolution: "1F",
		StepInterval:   30,
		UnitSystem:     string(Metric),
		Timezone:       "Local",
	}
}

// WaveConfig is a validated wave configuration. Bounds are held in Celsius.
type WaveConfig struct {
	Min               Temperature
	Max               Temperature
	Spread            float64
	StepResolution    Temperature
	StepInterval      time.Duration
	UnitSystem        UnitSystem
	SolarNoonOverride *TimeOfDay
	Location          *time.Location
}

// NewWaveConfig validates settings and returns an immutable WaveConfig.
func NewWaveConfig(s WaveSettings) (WaveConfig, error) {
	var errs []error

	minT, err := ParseTemperature(s.MinTemp)
	if err != nil {
		errs = append(errs, fmt.Errorf("min_temp: %w", err))
	}
	maxT, err := ParseTemperature(s.MaxTemp)
	if err != nil {
		errs = append(errs, fmt.Errorf("max_temp: %w", err))
	}
	if len(errs) == 0 && minT.Celsius() >= maxT.Celsius() {
		errs = append(errs, fmt.Errorf("min_temp %s must be below max_temp %s", minT, maxT))
	}

	if math.IsNaN(s.WaveSpread) || s.WaveSpread < MinWaveSpread || s.WaveSpread > MaxWaveSpread {
		errs = append(errs, fmt.Errorf("wave_spread %g outside [%g, %g]", s.WaveSpread, MinWaveSpread, MaxWaveSpread))
	}

	step, err := ParseStepResolution(s.StepResolution)
	if err != nil {
		errs = append(errs, fmt.Errorf("step_resolution: %w", err))
	}

	interval := time.Duration(s.StepInterval) * time.Minute
	if interval < MinStepInterval || interval > MaxStepInterval {
		errs = append(errs, fmt.Errorf("step_interval %d outside [1, 120] minutes", s.StepInterval))
	}

	system, err := ParseUnitSystem(s.UnitSystem)
	if err != nil {
		errs = append(errs, err)
	}

	var override *TimeOfDay
	if strings.TrimSpace(s.SolarNoonOverride) != "" {
		tod, err := ParseTimeOfDay(s.SolarNoonOverride)
		if err != nil {
			errs = append(errs, fmt.Errorf("solar_noon_override: %w", err))
		} else {
			override = &tod
		}
	}

	loc, err := loadLocation(s.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	if len(errs) > 0 {
		return WaveConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return WaveConfig{
		Min:               minT,
		Max:               maxT,
		Spread:            s.WaveSpread,
		StepResolution:    step,
		StepInterval:      interval,
		UnitSystem:        system,
		SolarNoonOverride: override,
		Location:          loc,
	}, nil
}

func loadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	default:
		return time.LoadLocation(name)
	}
}

// Settings renders the config back into its string-typed form.
func (c WaveConfig) Settings() WaveSettings {
	s := WaveSettings{
		MinTemp:        c.Min.String(),
		MaxTemp:        c.Max.String(),
		WaveSpread:     c.Spread,
		StepResolution: c.StepResolution.String(),
		StepInterval:   int(c.StepInterval / time.Minute),
		UnitSystem:     string(c.UnitSystem),
	}
	if c.SolarNoonOverride != nil {
		s.SolarNoonOverride = c.SolarNoonOverride.String()
	}
	if c.Location != nil {
		s.Timezone = c.Location.String()
	}
	return s
}

// MinC and MaxC return the bounds in Celsius.
func (c WaveConfig) MinC() float64 { return c.Min.Celsius() }
func (c WaveConfig) MaxC() float64 { return c.Max.Celsius() }

// HoursFromNoon returns how far t lies from solar noon in local hours,
// normalized to [-12, 12). Negative values are before noon.
func (c WaveConfig) HoursFromNoon(t time.Time, noon TimeOfDay) float64 {
	if c.Location != nil {
		t = t.In(c.Location)
	}
	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	h := hours - noon.Hours()
	switch {
	case h >= 12:
		h -= 24
	case h < -12:
		h += 24
	}
	return h
}

// phase is the angle fed to the wave for a given offset from solar noon.
func (c WaveConfig) phase(hoursFromNoon float64) float64 {
	return math.Pi * hoursFromNoon / (12 * c.Spread)
}

// ValueAt returns the wave temperature in Celsius at the given offset from
// solar noon. The curve peaks at solar noon; the spread stretches (>1) or
// compresses (<1) the period of the wave.
func (c WaveConfig) ValueAt(hoursFromNoon float64) float64 {
	normalized := (1 + math.Cos(c.phase(hoursFromNoon))) / 2
	return c.MinC() + (c.MaxC()-c.MinC())*normalized
}

// RisingAt reports whether the wave is increasing at the given offset.
func (c WaveConfig) RisingAt(hoursFromNoon float64) bool {
	return math.Sin(c.phase(hoursFromNoon)) < 0
}

// QuantizeTemperature rounds a Celsius value to the configured step,
// rounding in the step's own unit so a "1F" step lands on whole °F.
func (c WaveConfig) QuantizeTemperature(celsius float64) float64 {
	unit := c.StepResolution.Unit
	v := FromCelsius(celsius, unit)
	return ToCelsius(RoundToStep(v, c.StepResolution.Value), unit)
}

// QuantizeTime floors t to the step interval on the local wall-clock grid,
// counted in minutes from midnight. The grid ignores DST shifts, so 04:10 on
// a fall-back day floors to 03:45 for a 45 minute interval.
func (c WaveConfig) QuantizeTime(t time.Time) time.Time {
	step := int(c.StepInterval / time.Minute)
	if step <= 0 {
		return t
	}
	if c.Location != nil {
		t = t.In(c.Location)
	}
	minutes := t.Hour()*60 + t.Minute()
	minutes -= minutes % step
	floored := time.Date(t.Year(), t.Month(), t.Day(), minutes/60, minutes%60, 0, 0, t.Location())

	// In a repeated fall-back hour the wall-clock time occurs twice; take the
	// latest occurrence that is not after t.
	if later := floored.Add(time.Hour); !later.After(t) && sameWallClock(later, floored) {
		floored = later
	}
	if earlier := floored.Add(-time.Hour); floored.After(t) && sameWallClock(earlier, floored) {
		floored = earlier
	}
	return floored
}

func sameWallClock(a, b time.Time) bool {
	return a.Hour() == b.Hour() && a.Minute() == b.Minute()
}

// ToDisplay converts a Celsius value to the configured unit system.
func (c WaveConfig) ToDisplay(celsius float64) float64 {
	return FromCelsius(celsius, c.UnitSystem.DisplayUnit())
}
