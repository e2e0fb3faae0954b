package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unit is a temperature scale tag.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// Display symbols for each unit.
const (
	SymbolCelsius    = "°C"
	SymbolFahrenheit = "°F"
)

// decimalNumber accepts plain decimal notation only, so hex, underscore and
// exponent forms understood by strconv are rejected.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ErrInvalidTemperature is returned for temperature strings that cannot be parsed.
var ErrInvalidTemperature = errors.New("invalid temperature")

// Temperature is a magnitude tagged with the unit it was expressed in.
type Temperature struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Celsius returns the temperature normalized to Celsius.
func (t Temperature) Celsius() float64 {
	return ToCelsius(t.Value, t.Unit)
}

// String formats the temperature the way it is written in configuration, e.g. "68F".
func (t Temperature) String() string {
	return strconv.FormatFloat(t.Value, 'f', -1, 64) + string(t.Unit)
}

// ParseUnit accepts "C", "F", "°C" and "°F" in any case.
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "°")
	switch s {
	case "C":
		return Celsius, nil
	case "F":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// ParseTemperature parses values such as "20C", "68f", "20.5 °C" or "20".
// A missing unit defaults to Celsius.
func ParseTemperature(s string) (Temperature, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return Temperature{}, fmt.Errorf("%w: empty value", ErrInvalidTemperature)
	}

	unit := Celsius
	switch {
	case strings.HasSuffix(v, "F"):
		unit = Fahrenheit
		v = strings.TrimSuffix(v, "F")
	case strings.HasSuffix(v, "C"):
		v = strings.TrimSuffix(v, "C")
	}
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "°"))
	if !decimalNumber.MatchString(v) {
		return Temperature{}, fmt.Errorf("%w: %q", ErrInvalidTemperature, s)
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) {
		return Temperature{}, fmt.Errorf("%w: %q", ErrInvalidTemperature, s)
	}
	return Temperature{Value: f, Unit: unit}, nil
}

// ParseStepResolution parses a quantization step such as "1F" or "0.5C".
// The step must be strictly positive.
func ParseStepResolution(s string) (Temperature, error) {
	t, err := ParseTemperature(s)
	if err != nil {
		return Temperature{}, err
	}
	if t.Value <= 0 {
		return Temperature{}, fmt.Errorf("%w: step resolution must be positive, got %q", ErrInvalidTemperature, s)
	}
	return t, nil
}

// ToCelsius converts v from unit to Celsius.
func ToCelsius(v float64, unit Unit) float64 {
	if unit == Fahrenheit {
		return (v - 32) * 5 / 9
	}
	return v
}

// FromCelsius converts a Celsius value to the target unit.
func FromCelsius(v float64, target Unit) float64 {
	if target == Fahrenheit {
		return v*9/5 + 32
	}
	return v
}

// Convert expresses t in the target unit, rounded to two decimals.
func Convert(t Temperature, target Unit) Temperature {
	return Temperature{Value: round2(FromCelsius(t.Celsius(), target)), Unit: target}
}

// UnitSymbol returns the display symbol for a unit.
func UnitSymbol(unit Unit) string {
	if unit == Fahrenheit {
		return SymbolFahrenheit
	}
	return SymbolCelsius
}

// RoundToStep rounds v to the nearest multiple of step, ties to even.
// Non-positive steps leave v unchanged.
func RoundToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.RoundToEven(v/step) * step
}

// round1 and round2 trim published values to the precision consumers display.
func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
