package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/breakline/surfspots/internal/apperror"
	"github.com/breakline/surfspots/internal/model"
	"github.com/breakline/surfspots/internal/repository"
)

// compile-time check that *DB implements repository.SpotRepository
var _ repository.SpotRepository = (*DB)(nil)

const spotColumns = `s.id, s.name, s.description, s.image_url, s.region, s.country,
	s.difficulty, s.wave_type, s.swell_direction, s.wind_direction, s.tide,
	s.crowd_factor, s.season, s.lat, s.lng, s.user_id,
	s.forecast_captured_at, s.forecast_data, s.forecast_fetched_at,
	s.created_at, s.updated_at,
	u.username, u.email, u.image`

// CreateSpot inserts a new spot, including its forecast snapshot if one was
// fetched. The spot's ID and timestamps are set here.
func (db *DB) CreateSpot(ctx context.Context, spot *model.SurfSpot) error {
	spot.ID = xid.New().String()

	now := time.Now()
	spot.CreatedAt = now
	spot.UpdatedAt = now

	season, err := json.Marshal(spot.Season)
	if err != nil {
		return fmt.Errorf("sqlite: encoding season tags: %w", err)
	}

	capturedAt, data, fetchedAt := forecastColumns(spot.Forecast)

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO spots (id, name, description, image_url, region, country,
			difficulty, wave_type, swell_direction, wind_direction, tide,
			crowd_factor, season, lat, lng, user_id,
			forecast_captured_at, forecast_data, forecast_fetched_at,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		spot.ID,
		spot.Name,
		spot.Description,
		spot.ImageURL,
		spot.Region,
		spot.Country,
		spot.Difficulty,
		spot.WaveType,
		spot.SwellDirection,
		spot.WindDirection,
		spot.Tide,
		spot.CrowdFactor,
		string(season),
		spot.Location.Lat,
		spot.Location.Lng,
		spot.UserID,
		capturedAt,
		data,
		fetchedAt,
		spot.CreatedAt,
		spot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating spot: %w", err)
	}

	return nil
}

// GetSpotByID retrieves a single spot with its owner populated.
// Returns apperror.ErrNotFound if no spot exists with that ID.
func (db *DB) GetSpotByID(ctx context.Context, id string) (*model.SurfSpot, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+spotColumns+`
		 FROM spots s
		 LEFT JOIN users u ON u.id = s.user_id
		 WHERE s.id = ?`,
		id,
	)

	spot, err := scanSpot(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("spot", id)
		}
		return nil, fmt.Errorf("sqlite: getting spot %s: %w", id, err)
	}

	return spot, nil
}

// ListSpots returns all spots, newest first, with their owners populated.
func (db *DB) ListSpots(ctx context.Context) ([]model.SurfSpot, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+spotColumns+`
		 FROM spots s
		 LEFT JOIN users u ON u.id = s.user_id
		 ORDER BY s.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing spots: %w", err)
	}
	defer rows.Close()

	spots := []model.SurfSpot{}
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning spot row: %w", err)
		}
		spots = append(spots, *spot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating spots: %w", err)
	}

	return spots, nil
}

// UpdateSpot writes the full spot row back, forecast columns included.
// Callers load the spot first, so an unchanged forecast is written back
// verbatim and a refreshed one replaces the old snapshot wholesale.
func (db *DB) UpdateSpot(ctx context.Context, spot *model.SurfSpot) error {
	spot.UpdatedAt = time.Now()

	season, err := json.Marshal(spot.Season)
	if err != nil {
		return fmt.Errorf("sqlite: encoding season tags: %w", err)
	}

	capturedAt, data, fetchedAt := forecastColumns(spot.Forecast)

	result, err := db.conn.ExecContext(ctx,
		`UPDATE spots
		 SET name = ?, description = ?, image_url = ?, region = ?, country = ?,
			 difficulty = ?, wave_type = ?, swell_direction = ?, wind_direction = ?,
			 tide = ?, crowd_factor = ?, season = ?, lat = ?, lng = ?,
			 forecast_captured_at = ?, forecast_data = ?, forecast_fetched_at = ?,
			 updated_at = ?
		 WHERE id = ?`,
		spot.Name,
		spot.Description,
		spot.ImageURL,
		spot.Region,
		spot.Country,
		spot.Difficulty,
		spot.WaveType,
		spot.SwellDirection,
		spot.WindDirection,
		spot.Tide,
		spot.CrowdFactor,
		string(season),
		spot.Location.Lat,
		spot.Location.Lng,
		capturedAt,
		data,
		fetchedAt,
		spot.UpdatedAt,
		spot.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating spot %s: %w", spot.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("spot", spot.ID)
	}

	return nil
}

// DeleteSpot removes a spot. The ON DELETE CASCADE on comments.spot_id takes
// the spot's entire comment tree with it in the same statement.
func (db *DB) DeleteSpot(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM spots WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting spot %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("spot", id)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows so one scan function serves
// single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

func scanSpot(row scanner) (*model.SurfSpot, error) {
	var (
		s          model.SurfSpot
		season     string
		capturedAt sql.NullTime
		data       sql.NullString
		fetchedAt  sql.NullTime
		username   sql.NullString
		email      sql.NullString
		image      sql.NullString
	)

	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.ImageURL, &s.Region, &s.Country,
		&s.Difficulty, &s.WaveType, &s.SwellDirection, &s.WindDirection, &s.Tide,
		&s.CrowdFactor, &season, &s.Location.Lat, &s.Location.Lng, &s.UserID,
		&capturedAt, &data, &fetchedAt,
		&s.CreatedAt, &s.UpdatedAt,
		&username, &email, &image,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(season), &s.Season); err != nil {
		return nil, fmt.Errorf("decoding season tags: %w", err)
	}

	if capturedAt.Valid && data.Valid {
		s.Forecast = &model.ForecastSnapshot{
			CapturedAt:  capturedAt.Time,
			Data:        json.RawMessage(data.String),
			LastFetched: fetchedAt.Time,
		}
	}

	// Only the public profile fields are populated — responses never carry
	// more of the owning user than the frontend needs.
	if username.Valid || email.Valid {
		s.User = &model.User{
			ID:       s.UserID,
			Username: username.String,
			Email:    email.String,
			Image:    image.String,
		}
	}

	return &s, nil
}

// forecastColumns flattens an optional snapshot into the three nullable
// spot columns.
func forecastColumns(f *model.ForecastSnapshot) (capturedAt, data, fetchedAt any) {
	if f == nil {
		return nil, nil, nil
	}
	return f.CapturedAt, string(f.Data), f.LastFetched
}
