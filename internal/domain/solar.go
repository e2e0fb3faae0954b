package domain

import (
	"context"
	"log/slog"
)

// Where a resolved solar noon came from.
const (
	NoonSourceOverride  = "override"
	NoonSourceSun       = "sun"
	NoonSourceWallClock = "wall_clock"
)

// SolarNoon is the anchor of the wave for one evaluation.
type SolarNoon struct {
	Time   TimeOfDay `json:"time"`
	Source string    `json:"source"`
}

// ResolveSolarNoon picks the solar noon for an evaluation: the manual
// override when configured, otherwise the host's sun data, otherwise 12:00.
// A nil provider or a provider error degrades to wall-clock noon.
func ResolveSolarNoon(ctx context.Context, cfg WaveConfig, sun SunProvider, logger *slog.Logger) SolarNoon {
	if cfg.SolarNoonOverride != nil {
		return SolarNoon{Time: *cfg.SolarNoonOverride, Source: NoonSourceOverride}
	}

	if sun != nil {
		state, err := sun.SunState(ctx)
		if err != nil {
			logger.Debug("sun state unavailable, using wall clock noon", "error", err)
			return SolarNoon{Time: WallClockNoon, Source: NoonSourceWallClock}
		}
		if noon, ok := state.SolarNoon(cfg.Location); ok {
			return SolarNoon{Time: noon, Source: NoonSourceSun}
		}
		logger.Debug("sun state incomplete, using wall clock noon",
			"next_rising", state.NextRising,
			"next_setting", state.NextSetting,
		)
	}

	return SolarNoon{Time: WallClockNoon, Source: NoonSourceWallClock}
}
