package hass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/daily-temperature-wave/internal/domain"
	"github.com/couchcryptid/daily-temperature-wave/internal/observability"
)

const sunEntityPath = "/api/states/sun.sun"

// Client implements domain.SunProvider using the Home Assistant REST API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Home Assistant client. baseURL is the instance root,
// e.g. http://homeassistant.local:8123.
func NewClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// SunState fetches the sun.sun entity.
func (c *Client) SunState(ctx context.Context) (domain.SunState, error) {
	start := time.Now()
	state, err := c.doRequest(ctx, c.baseURL+sunEntityPath)
	c.metrics.SunAPIDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.SunRequests.WithLabelValues("error").Inc()
		return domain.SunState{}, err
	}
	c.metrics.SunRequests.WithLabelValues("success").Inc()
	c.logger.Debug("sun state fetched",
		"above_horizon", state.AboveHorizon,
		"next_rising", state.NextRising,
		"next_setting", state.NextSetting,
	)
	return state, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.SunState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.SunState{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SunState{}, fmt.Errorf("sun state request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.SunState{}, fmt.Errorf("home assistant API error: status %d: %s", resp.StatusCode, body)
	}

	var entity entityState
	if err := json.NewDecoder(resp.Body).Decode(&entity); err != nil {
		return domain.SunState{}, fmt.Errorf("decode response: %w", err)
	}

	return domain.SunState{
		AboveHorizon: entity.State == "above_horizon",
		NextRising:   entity.Attributes.NextRising,
		NextSetting:  entity.Attributes.NextSetting,
		NextNoon:     entity.Attributes.NextNoon,
	}, nil
}

// Home Assistant API response types.

type entityState struct {
	EntityID   string        `json:"entity_id"`
	State      string        `json:"state"` // above_horizon | below_horizon
	Attributes sunAttributes `json:"attributes"`
}

type sunAttributes struct {
	NextRising  time.Time `json:"next_rising"`
	NextSetting time.Time `json:"next_setting"`
	NextNoon    time.Time `json:"next_noon"`
	Elevation   float64   `json:"elevation"`
}
