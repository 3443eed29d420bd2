// Package forecast calls the Stormglass marine-weather API.
//
// The client has one deliberate quirk: it never returns an error. A spot
// create or update must not fail because the forecast provider is down, so
// every failure mode — missing API key, network error, non-2xx status,
// unreadable body — degrades to a nil snapshot and a logged warning. The
// caller treats nil as "leave the stored forecast alone".
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/breakline/surfspots/internal/model"
	"github.com/breakline/surfspots/internal/observability"
)

const defaultBaseURL = "https://api.stormglass.io/v2"

// forecastWindow is how far ahead each request asks for data.
const forecastWindow = 3 * 24 * time.Hour

// params is the fixed parameter set requested from the provider.
const params = "waveHeight,wavePeriod,windSpeed,windDirection,swellDirection,waterTemperature"

// Client fetches forecast snapshots for a coordinate.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a forecast client. An empty apiKey is allowed — Fetch will
// just always report "no data" — so the server can run without credentials.
func New(apiKey string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{},
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
}

// WithBaseURL points the client at a different endpoint. Used in tests to
// target an httptest.Server.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// WithClock replaces the time source. Used in tests to freeze timestamps.
func (c *Client) WithClock(clock clockwork.Clock) *Client {
	c.clock = clock
	return c
}

// Fetch requests the next three days of forecast data for the coordinate.
//
// On success it returns a snapshot stamped with the current time; on any
// failure it returns nil. The provider's response body is stored opaquely —
// we validate that it is JSON but never interpret its schema.
func (c *Client) Fetch(ctx context.Context, lat, lng float64) *model.ForecastSnapshot {
	if c.apiKey == "" {
		c.logger.Warn("forecast: API key not configured, skipping fetch")
		c.metrics.ForecastFetches.WithLabelValues("no_credentials").Inc()
		return nil
	}

	now := c.clock.Now()
	end := now.Add(forecastWindow)

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%g", lat))
	q.Set("lng", fmt.Sprintf("%g", lng))
	q.Set("params", params)
	q.Set("source", "noaa")
	q.Set("end", end.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/weather/point?"+q.Encode(), nil)
	if err != nil {
		c.fail("building request", err)
		return nil
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.fail("calling provider", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.fail("provider response", fmt.Errorf("status %d", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.fail("reading response body", err)
		return nil
	}
	if !json.Valid(body) {
		c.fail("decoding response", fmt.Errorf("body is not valid JSON"))
		return nil
	}

	c.metrics.ForecastFetches.WithLabelValues("success").Inc()
	return &model.ForecastSnapshot{
		CapturedAt:  now,
		Data:        json.RawMessage(body),
		LastFetched: now,
	}
}

func (c *Client) fail(stage string, err error) {
	c.logger.Warn("forecast fetch failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	c.metrics.ForecastFetches.WithLabelValues("error").Inc()
}
