package domain

import (
	"time"
)

const (
	forecastHours  = 24
	forecastDays   = 7
	dailySampleGap = 10 * time.Minute

	// Curve geometry: one point per hour across a solar day, 10 units per
	// hour on x and a 0–100 scale on y.
	curvePoints    = 25
	curveUnitsHour = 10
	curveScale     = 100
)

// ForecastPoint is one hourly sample of the short-range forecast.
type ForecastPoint struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	HoursFromNoon float64   `json:"hours_from_noon"`
}

// DailyForecast is the temperature envelope of one calendar day.
type DailyForecast struct {
	Date      string  `json:"date"`
	DayOfWeek string  `json:"day_of_week"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// CurvePoint is a plottable sample of the solar-day curve.
type CurvePoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Temp float64 `json:"temp"`
}

// CurvePosition marks the evaluation instant on the curve.
type CurvePosition struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Temp          float64 `json:"temp"`
	HoursFromNoon float64 `json:"hours_from_noon"`
	Rising        bool    `json:"rising"`
}

// TemperatureRange is the configured wave envelope in display units.
type TemperatureRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit Unit    `json:"unit"`
}

// Curve is the data needed to draw the wave and where "now" sits on it.
type Curve struct {
	Points    []CurvePoint     `json:"points"`
	Current   CurvePosition    `json:"current_position"`
	SolarNoon TimeOfDay        `json:"solar_noon"`
	Range     TemperatureRange `json:"temperature_range"`
}

// CurveSummary is a flattened view of a Curve for compact dashboard cards.
type CurveSummary struct {
	CurrentTemp          float64 `json:"current_temp"`
	CurrentHoursFromNoon float64 `json:"current_hours_from_noon"`
	SolarNoon            string  `json:"solar_noon"`
	MinTemp              float64 `json:"min_temp"`
	MaxTemp              float64 `json:"max_temp"`
	Unit                 Unit    `json:"unit"`
	IsRising             bool    `json:"is_rising"`
}

// Evaluator evaluates a validated wave against one resolved solar noon.
type Evaluator struct {
	cfg  WaveConfig
	noon SolarNoon
}

// NewEvaluator binds a config to the solar noon resolved for this evaluation.
func NewEvaluator(cfg WaveConfig, noon SolarNoon) Evaluator {
	return Evaluator{cfg: cfg, noon: noon}
}

func (e Evaluator) Config() WaveConfig   { return e.cfg }
func (e Evaluator) SolarNoon() SolarNoon { return e.noon }

// HoursFromNoon is the offset of t from the resolved solar noon.
func (e Evaluator) HoursFromNoon(t time.Time) float64 {
	return e.cfg.HoursFromNoon(t, e.noon.Time)
}

// celsiusAt evaluates the wave at t. Stepwise evaluation floors t to the
// step interval and rounds the result to the step resolution.
func (e Evaluator) celsiusAt(t time.Time, stepwise bool) float64 {
	if stepwise {
		t = e.cfg.QuantizeTime(t)
	}
	c := e.cfg.ValueAt(e.HoursFromNoon(t))
	if stepwise {
		c = e.cfg.QuantizeTemperature(c)
	}
	return c
}

// Current is the continuous wave value at t in display units.
func (e Evaluator) Current(t time.Time) float64 {
	return e.cfg.ToDisplay(e.celsiusAt(t, false))
}

// CurrentStep is the quantized wave value at t in display units.
func (e Evaluator) CurrentStep(t time.Time) float64 {
	return e.cfg.ToDisplay(e.celsiusAt(t, true))
}

// Rising reports whether the wave is increasing at t.
func (e Evaluator) Rising(t time.Time) bool {
	return e.cfg.RisingAt(e.HoursFromNoon(t))
}

// Forecast24h samples the wave hourly for the 24 hours starting at t.
func (e Evaluator) Forecast24h(t time.Time, stepwise bool) []ForecastPoint {
	t = e.local(t)
	points := make([]ForecastPoint, 0, forecastHours)
	for i := range forecastHours {
		at := t.Add(time.Duration(i) * time.Hour)
		points = append(points, ForecastPoint{
			Time:          at,
			Temperature:   round1(e.cfg.ToDisplay(e.celsiusAt(at, stepwise))),
			HoursFromNoon: round2(e.HoursFromNoon(at)),
		})
	}
	return points
}

// Forecast7d returns the daily min and max for seven calendar days starting
// with the day containing t. Each day is sampled every ten minutes.
func (e Evaluator) Forecast7d(t time.Time, stepwise bool) []DailyForecast {
	t = e.local(t)
	days := make([]DailyForecast, 0, forecastDays)
	for d := range forecastDays {
		start := time.Date(t.Year(), t.Month(), t.Day()+d, 0, 0, 0, 0, t.Location())
		end := time.Date(t.Year(), t.Month(), t.Day()+d+1, 0, 0, 0, 0, t.Location())

		lo, hi := e.celsiusAt(start, stepwise), e.celsiusAt(start, stepwise)
		for at := start.Add(dailySampleGap); at.Before(end); at = at.Add(dailySampleGap) {
			c := e.celsiusAt(at, stepwise)
			lo = min(lo, c)
			hi = max(hi, c)
		}

		days = append(days, DailyForecast{
			Date:      start.Format(time.DateOnly),
			DayOfWeek: start.Weekday().String(),
			Min:       round1(e.cfg.ToDisplay(lo)),
			Max:       round1(e.cfg.ToDisplay(hi)),
		})
	}
	return days
}

// Curve samples the wave once per hour across the solar day centred on
// solar noon and marks the position of t.
func (e Evaluator) Curve(t time.Time) Curve {
	dMin := e.cfg.ToDisplay(e.cfg.MinC())
	dMax := e.cfg.ToDisplay(e.cfg.MaxC())
	scaleY := func(temp float64) float64 {
		return curveScale - (temp-dMin)*curveScale/(dMax-dMin)
	}

	points := make([]CurvePoint, 0, curvePoints)
	for hour := range curvePoints {
		temp := e.cfg.ToDisplay(e.cfg.ValueAt(float64(hour - 12)))
		points = append(points, CurvePoint{
			X:    float64(hour * curveUnitsHour),
			Y:    scaleY(temp),
			Temp: round1(temp),
		})
	}

	h := e.HoursFromNoon(t)
	current := e.Current(t)

	return Curve{
		Points: points,
		Current: CurvePosition{
			X:             (h + 12) * curveUnitsHour,
			Y:             scaleY(current),
			Temp:          round1(current),
			HoursFromNoon: round1(h),
			Rising:        e.cfg.RisingAt(h),
		},
		SolarNoon: e.noon.Time,
		Range: TemperatureRange{
			Min:  round1(dMin),
			Max:  round1(dMax),
			Unit: e.cfg.UnitSystem.DisplayUnit(),
		},
	}
}

// Summary flattens the curve for compact consumers.
func (c Curve) Summary() CurveSummary {
	return CurveSummary{
		CurrentTemp:          c.Current.Temp,
		CurrentHoursFromNoon: c.Current.HoursFromNoon,
		SolarNoon:            c.SolarNoon.String(),
		MinTemp:              c.Range.Min,
		MaxTemp:              c.Range.Max,
		Unit:                 c.Range.Unit,
		IsRising:             c.Current.Rising,
	}
}

func (e Evaluator) local(t time.Time) time.Time {
	if e.cfg.Location != nil {
		return t.In(e.cfg.Location)
	}
	return t
}
