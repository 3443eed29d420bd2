package model

import "time"

// Enum values for the descriptive spot fields. These mirror what the
// frontend offers in its pickers; anything else is rejected at write time.
var (
	Difficulties = []string{"Beginner", "Intermediate", "Advanced", "Expert"}
	WaveTypes    = []string{"Beach break", "Reef break", "Point break", "River mouth"}
	Tides        = []string{"Low", "Mid", "High", "All"}
	CrowdFactors = []string{"Low", "Medium", "High"}
)

// Defaults applied when a spot is created without the corresponding field.
const (
	DefaultDifficulty  = "Intermediate"
	DefaultWaveType    = "Beach break"
	DefaultTide        = "All"
	DefaultCrowdFactor = "Medium"
)

// Location is a geographic coordinate. Both fields are pointers because a
// spot may legitimately have no coordinates at all — and because an explicit
// 0 (equator, prime meridian) is a real coordinate, distinct from "absent".
type Location struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// HasCoordinates reports whether both latitude and longitude are set.
// This is the gate for forecast fetches.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lng != nil
}

// SurfSpot represents a surf location.
//
// The spot owns its embedded forecast snapshot exclusively: the snapshot is
// replaced as a unit when refreshed and otherwise preserved untouched.
// Comments live in their own table keyed by spot ID; the per-spot comment
// list visible to clients is always derived from those records.
//
// User is the owning user, populated on reads via a join — only the public
// profile fields end up in responses, never anything sensitive.
type SurfSpot struct {
	ID             string            `json:"id"             db:"id"`
	Name           string            `json:"name"           db:"name"`
	Description    string            `json:"description"    db:"description"`
	ImageURL       string            `json:"imageUrl"       db:"image_url"`
	Region         string            `json:"region"         db:"region"`
	Country        string            `json:"country"        db:"country"`
	Difficulty     string            `json:"difficulty"     db:"difficulty"`
	WaveType       string            `json:"waveType"       db:"wave_type"`
	SwellDirection string            `json:"swellDirection" db:"swell_direction"`
	WindDirection  string            `json:"windDirection"  db:"wind_direction"`
	Tide           string            `json:"tide"           db:"tide"`
	CrowdFactor    string            `json:"crowdFactor"    db:"crowd_factor"`
	Season         []string          `json:"season"         db:"season"`
	Location       Location          `json:"location"`
	UserID         string            `json:"userId"         db:"user_id"`
	User           *User             `json:"user,omitempty"`
	Forecast       *ForecastSnapshot `json:"forecast,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"      db:"created_at"`
	UpdatedAt      time.Time         `json:"updatedAt"      db:"updated_at"`
}

// SpotDetail is the GET /api/spots/{id} response shape: the spot plus its
// comment tree and a read-time average of the top-level comment ratings.
// Rating is derived on every read and never persisted; it is omitted
// entirely when the spot has no rated comments (not serialized as zero).
type SpotDetail struct {
	SurfSpot
	Comments []Comment `json:"comments"`
	Rating   *float64  `json:"rating,omitempty"`
}
