package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvaluator(t *testing.T, mutate func(*WaveSettings)) Evaluator {
	t.Helper()
	return NewEvaluator(testConfig(t, mutate), SolarNoon{Time: WallClockNoon, Source: NoonSourceWallClock})
}

func TestEvaluator_Current(t *testing.T) {
	e := testEvaluator(t, nil)

	assert.InDelta(t, 30.0, e.Current(at(12, 0)), 1e-9)
	assert.InDelta(t, 20.0, e.Current(at(0, 0)), 1e-9)
	assert.InDelta(t, 25.0, e.Current(at(18, 0)), 1e-9)
}

func TestEvaluator_Current_Imperial(t *testing.T) {
	e := testEvaluator(t, func(s *WaveSettings) { s.UnitSystem = "imperial" })

	assert.InDelta(t, 86.0, e.Current(at(12, 0)), 1e-9)
	assert.InDelta(t, 68.0, e.Current(at(0, 0)), 1e-9)
}

func TestEvaluator_CurrentStep(t *testing.T) {
	e := testEvaluator(t, nil)

	// 10:47 floors to 10:30 (h = -1.5) → 29.62°C → 85.3°F → 85°F → 29.44°C.
	assert.InDelta(t, ToCelsius(85, Fahrenheit), e.CurrentStep(at(10, 47)), 1e-9)
	// Holds steady within one interval.
	assert.Equal(t, e.CurrentStep(at(10, 31)), e.CurrentStep(at(10, 59)))
}

func TestEvaluator_Rising(t *testing.T) {
	e := testEvaluator(t, nil)

	assert.True(t, e.Rising(at(8, 0)))
	assert.False(t, e.Rising(at(15, 0)))
}

func TestEvaluator_Forecast24h(t *testing.T) {
	e := testEvaluator(t, nil)
	start := at(0, 0)

	points := e.Forecast24h(start, false)
	require.Len(t, points, 24)

	assert.Equal(t, start, points[0].Time)
	assert.Equal(t, start.Add(23*time.Hour), points[23].Time)
	assert.InDelta(t, 20.0, points[0].Temperature, 1e-9)
	assert.InDelta(t, -12.0, points[0].HoursFromNoon, 1e-9)
	assert.InDelta(t, 30.0, points[12].Temperature, 1e-9)
	assert.InDelta(t, 0.0, points[12].HoursFromNoon, 1e-9)
	assert.InDelta(t, 25.0, points[18].Temperature, 1e-9)
}

func TestEvaluator_Forecast24h_Stepwise(t *testing.T) {
	e := testEvaluator(t, nil)

	for _, p := range e.Forecast24h(at(0, 15), true) {
		f := FromCelsius(p.Temperature, Fahrenheit)
		// Rounded to one decimal after conversion, so allow for that.
		assert.InDelta(t, RoundToStep(f, 1), f, 0.1, "stepwise forecast at %s should sit on a whole °F", p.Time)
	}
}

func TestEvaluator_Forecast7d(t *testing.T) {
	e := testEvaluator(t, nil)

	days := e.Forecast7d(at(15, 20), false)
	require.Len(t, days, 7)

	assert.Equal(t, "2026-06-21", days[0].Date)
	assert.Equal(t, "Sunday", days[0].DayOfWeek)
	assert.Equal(t, "2026-06-27", days[6].Date)
	assert.Equal(t, "Saturday", days[6].DayOfWeek)
	for _, d := range days {
		assert.InDelta(t, 20.0, d.Min, 1e-9, d.Date)
		assert.InDelta(t, 30.0, d.Max, 1e-9, d.Date)
	}
}

func TestEvaluator_Forecast7d_WideSpread(t *testing.T) {
	e := testEvaluator(t, func(s *WaveSettings) { s.WaveSpread = 2 })

	days := e.Forecast7d(at(9, 0), true)
	require.Len(t, days, 7)

	// A spread of 2 stretches the period to 48h, so the daily trough only
	// reaches the midpoint of the range.
	assert.InDelta(t, 25.0, days[0].Min, 0.3)
	assert.InDelta(t, 30.0, days[0].Max, 1e-9)
}

func TestEvaluator_Curve(t *testing.T) {
	e := testEvaluator(t, nil)

	curve := e.Curve(at(18, 0))
	require.Len(t, curve.Points, 25)

	assert.Equal(t, CurvePoint{X: 0, Y: 100, Temp: 20}, roundPoint(curve.Points[0]))
	assert.Equal(t, CurvePoint{X: 60, Y: 50, Temp: 25}, roundPoint(curve.Points[6]))
	assert.Equal(t, CurvePoint{X: 120, Y: 0, Temp: 30}, roundPoint(curve.Points[12]))
	assert.Equal(t, CurvePoint{X: 240, Y: 100, Temp: 20}, roundPoint(curve.Points[24]))

	assert.InDelta(t, 180.0, curve.Current.X, 1e-9)
	assert.InDelta(t, 50.0, curve.Current.Y, 1e-9)
	assert.InDelta(t, 25.0, curve.Current.Temp, 1e-9)
	assert.InDelta(t, 6.0, curve.Current.HoursFromNoon, 1e-9)
	assert.False(t, curve.Current.Rising)

	assert.Equal(t, WallClockNoon, curve.SolarNoon)
	assert.Equal(t, TemperatureRange{Min: 20, Max: 30, Unit: Celsius}, curve.Range)
}

func TestEvaluator_Curve_ImperialScaleMatchesRange(t *testing.T) {
	e := testEvaluator(t, func(s *WaveSettings) { s.UnitSystem = "imperial" })

	curve := e.Curve(at(12, 0))

	assert.Equal(t, TemperatureRange{Min: 68, Max: 86, Unit: Fahrenheit}, curve.Range)
	assert.InDelta(t, 0.0, curve.Points[12].Y, 1e-9)
	assert.InDelta(t, 100.0, curve.Points[0].Y, 1e-9)
	assert.InDelta(t, 0.0, curve.Current.Y, 1e-9)
}

func TestCurve_Summary(t *testing.T) {
	e := testEvaluator(t, nil)

	got := e.Curve(at(9, 0)).Summary()
	want := CurveSummary{
		CurrentTemp:          round1(e.Current(at(9, 0))),
		CurrentHoursFromNoon: -3,
		SolarNoon:            "12:00",
		MinTemp:              20,
		MaxTemp:              30,
		Unit:                 Celsius,
		IsRising:             true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluator_Snapshot(t *testing.T) {
	e := testEvaluator(t, nil)

	snap := e.Snapshot(at(12, 0))

	assert.Equal(t, at(12, 0), snap.EvaluatedAt)
	assert.Equal(t, Celsius, snap.Unit)
	assert.Equal(t, NoonSourceWallClock, snap.SolarNoon.Source)
	assert.InDelta(t, 30.0, snap.Current, 1e-9)
	assert.InDelta(t, 30.0, snap.CurrentStep, 1e-9)
	assert.False(t, snap.Rising)
	assert.Len(t, snap.Forecast24h, 24)
	assert.Len(t, snap.Forecast24hStep, 24)
	assert.Len(t, snap.Forecast7d, 7)
	assert.Len(t, snap.Forecast7dStep, 7)
	assert.Len(t, snap.Visual.Points, 25)
}

func TestSnapshot_Readings(t *testing.T) {
	snap := testEvaluator(t, nil).Snapshot(at(8, 0))

	readings := snap.Readings()
	require.Len(t, readings, len(Sensors))
	for i, d := range Sensors {
		assert.Equal(t, d.Key, readings[i].Sensor)
		assert.Equal(t, snap.EvaluatedAt, readings[i].EvaluatedAt)
	}

	current, err := snap.Reading(SensorCurrent)
	require.NoError(t, err)
	assert.Equal(t, snap.Current, current.State)
	assert.Equal(t, "°C", current.Unit)
	assert.Equal(t, "mdi:thermometer", current.Icon)

	forecast, err := snap.Reading(SensorForecast24h)
	require.NoError(t, err)
	assert.Equal(t, snap.Forecast24h[0].Temperature, forecast.State)
	assert.Contains(t, forecast.Attributes, "forecast")

	weekly, err := snap.Reading(SensorForecast7dStep)
	require.NoError(t, err)
	assert.Equal(t, snap.Forecast7dStep[0].Max, weekly.State)

	rising, err := snap.Reading(SensorRising)
	require.NoError(t, err)
	assert.Equal(t, true, rising.State)
	assert.Empty(t, rising.Unit)
	assert.Equal(t, "mdi:arrow-up", rising.Icon)

	_, err = snap.Reading("humidity")
	assert.ErrorIs(t, err, ErrUnknownSensor)
}

func TestSnapshot_ReadingsSerialize(t *testing.T) {
	snap := testEvaluator(t, nil).Snapshot(at(8, 0))

	visual, err := snap.Reading(SensorVisual)
	require.NoError(t, err)

	data, err := json.Marshal(visual)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sensor":"visual"`)
	assert.Contains(t, string(data), `"current_position"`)
	assert.Contains(t, string(data), `"summary"`)
}

func roundPoint(p CurvePoint) CurvePoint {
	return CurvePoint{X: round1(p.X), Y: round1(p.Y), Temp: p.Temp}
}
