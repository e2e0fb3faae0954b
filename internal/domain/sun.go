package domain

import (
	"context"
	"time"
)

// SunState is the host platform's view of the sun for the current day.
type SunState struct {
	AboveHorizon bool
	NextRising   time.Time
	NextSetting  time.Time
	NextNoon     time.Time // zero when the host does not report it
}

// SunProvider reads sun position data from the host platform.
type SunProvider interface {
	SunState(ctx context.Context) (SunState, error)
}

// SolarNoon returns the local time of solar noon implied by the sun state.
// When the sun is up, the next setting comes before the next rising and the
// midpoint of the two is solar midnight, so it is shifted by twelve hours.
func (s SunState) SolarNoon(loc *time.Location) (TimeOfDay, bool) {
	if loc == nil {
		loc = time.Local
	}
	if !s.NextNoon.IsZero() {
		n := s.NextNoon.In(loc)
		return TimeOfDay{Hour: n.Hour(), Minute: n.Minute()}, true
	}
	if s.NextRising.IsZero() || s.NextSetting.IsZero() {
		return TimeOfDay{}, false
	}

	mid := s.NextRising.Add(s.NextSetting.Sub(s.NextRising) / 2)
	if s.NextSetting.Before(s.NextRising) {
		mid = mid.Add(12 * time.Hour)
	}
	mid = mid.In(loc)
	return TimeOfDay{Hour: mid.Hour(), Minute: mid.Minute()}, true
}
