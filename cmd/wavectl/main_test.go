package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const at = "--at=2026-06-21T15:00:00Z"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{
		"WAVE_MIN_TEMP", "WAVE_MAX_TEMP", "WAVE_SPREAD", "WAVE_STEP_RESOLUTION",
		"WAVE_STEP_INTERVAL", "WAVE_UNIT_SYSTEM", "WAVE_SOLAR_NOON_OVERRIDE",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	t.Setenv("WAVE_TIMEZONE", "UTC")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestValue(t *testing.T) {
	out, err := execute(t, "value", at)
	require.NoError(t, err)

	got := decodeOutput[valueOutput](t, out)
	assert.InDelta(t, 28.54, got.Current, 1e-9)
	assert.InDelta(t, 28.33, got.CurrentStep, 1e-9, "1F step rounds 83.4F down to 83F")
	assert.Equal(t, "°C", got.Unit)
	assert.False(t, got.Rising)
	assert.InDelta(t, 3.0, got.HoursFromNoon, 1e-9)
	assert.Equal(t, domain.NoonSourceWallClock, got.SolarNoon.Source)
}

func TestValue_FlagsOverrideEnvironment(t *testing.T) {
	out, err := execute(t, "value", at, "--noon=15:00", "--units=imperial")
	require.NoError(t, err)

	got := decodeOutput[valueOutput](t, out)
	assert.InDelta(t, 86.0, got.Current, 1e-9, "evaluated at the overridden noon")
	assert.Equal(t, "°F", got.Unit)
	assert.Equal(t, domain.NoonSourceOverride, got.SolarNoon.Source)
	assert.Equal(t, domain.TimeOfDay{Hour: 15}, got.SolarNoon.Time)
}

func TestValue_InvalidAt(t *testing.T) {
	_, err := execute(t, "value", "--at=noon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --at")
}

func TestForecast(t *testing.T) {
	out, err := execute(t, "forecast", at)
	require.NoError(t, err)
	hourly := decodeOutput[[]domain.ForecastPoint](t, out)
	require.Len(t, hourly, 24)
	assert.InDelta(t, 28.5, hourly[0].Temperature, 1e-9)

	out, err = execute(t, "forecast", "--range=7d", "--stepwise", at)
	require.NoError(t, err)
	daily := decodeOutput[[]domain.DailyForecast](t, out)
	require.Len(t, daily, 7)
	assert.Equal(t, "2026-06-21", daily[0].Date)
	assert.Equal(t, "Sunday", daily[0].DayOfWeek)
}

func TestForecast_InvalidRange(t *testing.T) {
	_, err := execute(t, "forecast", "--range=30d", at)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --range")
}

func TestCurve(t *testing.T) {
	out, err := execute(t, "curve", at)
	require.NoError(t, err)

	got := decodeOutput[map[string]any](t, out)
	assert.Len(t, got["points"], 25)
	summary := got["summary"].(map[string]any)
	assert.Equal(t, "12:00", summary["solar_noon"])
	assert.Equal(t, false, summary["is_rising"])
	assert.InDelta(t, 28.5, summary["current_temp"], 1e-9)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		args []string
		want conversionOutput
	}{
		{[]string{"68F", "C"}, conversionOutput{Input: "68F", Value: 20, Unit: "C", Symbol: "°C"}},
		{[]string{"20", "°F"}, conversionOutput{Input: "20C", Value: 68, Unit: "F", Symbol: "°F"}},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			out, err := execute(t, append([]string{"convert"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeOutput[conversionOutput](t, out))
		})
	}
}

func TestConvert_Invalid(t *testing.T) {
	for _, args := range [][]string{{"convert", "warm", "C"}, {"convert", "20C", "K"}, {"convert", "20C"}} {
		_, err := execute(t, args...)
		assert.Error(t, err, args)
	}
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "--min=60F", "--spread=2")
	require.NoError(t, err)

	got := decodeOutput[domain.WaveSettings](t, out)
	assert.Equal(t, "60F", got.MinTemp)
	assert.Equal(t, "30C", got.MaxTemp)
	assert.Equal(t, 2.0, got.WaveSpread)
	assert.Equal(t, "UTC", got.Timezone)
}

func TestValidate_Rejects(t *testing.T) {
	_, err := execute(t, "validate", "--min=35C")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = execute(t, "validate", "--interval=0")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}
