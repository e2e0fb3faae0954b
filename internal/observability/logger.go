package observability

import (
	"log/slog"

	"github.com/couchcryptid/daily-temperature-wave/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT, tags it
// with the node and installs it as the process default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).
		With("service", "daily-temperature-wave", "node_id", cfg.NodeID)
	slog.SetDefault(logger)
	return logger
}
