package model

import (
	"encoding/json"
	"time"
)

// ForecastSnapshot is a timestamped capture of the marine-forecast provider's
// response for a spot's coordinates.
//
// Data is kept opaque (raw JSON) — the provider's schema carries wave height,
// wave period, wind speed/direction, swell direction and water temperature per
// forecast hour, and we pass it through to clients untouched. A snapshot is
// always replaced wholesale on refresh, never partially merged.
type ForecastSnapshot struct {
	CapturedAt  time.Time       `json:"timestamp"`
	Data        json.RawMessage `json:"data"`
	LastFetched time.Time       `json:"lastFetched"`
}
