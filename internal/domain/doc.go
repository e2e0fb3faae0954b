// Package domain models a synthetic daily ambient-temperature wave.
//
// # Temperature Strings
//
// Bounds and step resolutions are written as a number with an optional unit
// suffix:
//
//	"20C", "68f", "20.5 °C"  →  value + unit
//	"20"                      →  Celsius assumed
//
// Everything is normalized to Celsius internally and converted to the
// configured unit system (metric → °C, imperial → °F) only when a reading is
// produced.
//
// # The Wave
//
// The curve is anchored to solar noon. With h the signed hours from solar
// noon in [-12, 12) and s the wave spread (0.1–5.0):
//
//	T(h) = min + (max - min) · (1 + cos(π·h / (12·s))) / 2
//
// For s = 1 the curve peaks at solar noon, bottoms out at solar midnight and
// crosses the midpoint six hours either side. Larger spreads flatten the
// curve and stretch its period; smaller spreads sharpen it. Because cos is
// even, the curve is continuous across midnight for every spread.
//
// The trend flag follows the derivative: the wave is rising while
// sin(π·h / (12·s)) < 0.
//
// # Solar Noon
//
// Resolved once per evaluation, in order of precedence:
//
//	manual override ("HH:MM")  →  host sun data  →  12:00 wall clock
//
// Host sun data reports the next rising and setting. While the sun is up the
// next setting precedes the next rising, so their midpoint is solar midnight
// and is shifted by twelve hours. See [SunState.SolarNoon].
//
// # Stepwise Mode
//
// Low-resolution consumers get a quantized reading: the evaluation time is
// floored to the step interval (1–120 minutes from local midnight) and the
// temperature is rounded, ties to even, to the step resolution in the step's
// own unit. A "1F" step therefore always yields whole Fahrenheit degrees even
// when readings are reported in Celsius.
//
// # Readings
//
// A [Snapshot] holds every reading for one instant: current and stepped
// values, 24-hour hourly and 7-day daily forecasts (each continuous and
// stepped), the rising flag, and a plottable [Curve]. [Snapshot.Readings]
// flattens it into one [Reading] per entry of [Sensors].
package domain
