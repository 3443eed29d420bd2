package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/breakline/surfspots/internal/apperror"
	"github.com/breakline/surfspots/internal/model"
	"github.com/breakline/surfspots/internal/repository"
)

// ForecastFetcher is the slice of the forecast client the spot service
// needs. Fetch returns nil on any provider failure — by contract it never
// returns an error, because a forecast failure must not abort the enclosing
// spot mutation.
type ForecastFetcher interface {
	Fetch(ctx context.Context, lat, lng float64) *model.ForecastSnapshot
}

// SpotInput is the caller-supplied spot payload for create and update.
// Every field is a pointer so "absent" and "set to empty/zero" stay
// distinguishable — updates only touch the fields the request carried.
//
// Lat/Lng are a flat alternative to Location accepted on create, matching
// what the frontend sends from its map picker.
type SpotInput struct {
	Name           *string         `json:"name"`
	Description    *string         `json:"description"`
	ImageURL       *string         `json:"imageUrl"`
	Region         *string         `json:"region"`
	Country        *string         `json:"country"`
	Difficulty     *string         `json:"difficulty"`
	WaveType       *string         `json:"waveType"`
	SwellDirection *string         `json:"swellDirection"`
	WindDirection  *string         `json:"windDirection"`
	Tide           *string         `json:"tide"`
	CrowdFactor    *string         `json:"crowdFactor"`
	Season         *[]string       `json:"season"`
	Location       *model.Location `json:"location"`
	Lat            *float64        `json:"lat"`
	Lng            *float64        `json:"lng"`
}

// SpotService handles surf-spot business logic, including the forecast
// refresh policy on create and update.
type SpotService struct {
	spots    repository.SpotRepository
	comments repository.CommentRepository
	forecast ForecastFetcher
	logger   *slog.Logger
}

// NewSpotService creates a SpotService.
func NewSpotService(spots repository.SpotRepository, comments repository.CommentRepository, forecast ForecastFetcher, logger *slog.Logger) *SpotService {
	return &SpotService{
		spots:    spots,
		comments: comments,
		forecast: forecast,
		logger:   logger,
	}
}

// Create validates and saves a new spot owned by actor.
//
// If the payload carries coordinates, the forecast provider is called
// synchronously and the snapshot embedded in the new spot. A provider
// failure is absorbed: the spot is created without a forecast.
func (s *SpotService) Create(ctx context.Context, actor *model.User, in SpotInput) (*model.SurfSpot, error) {
	name := strings.TrimSpace(deref(in.Name))
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}

	spot := &model.SurfSpot{
		Name:        name,
		Difficulty:  model.DefaultDifficulty,
		WaveType:    model.DefaultWaveType,
		Tide:        model.DefaultTide,
		CrowdFactor: model.DefaultCrowdFactor,
		Season:      []string{},
		UserID:      actor.ID,
	}

	if err := applyInput(spot, in); err != nil {
		return nil, err
	}

	// Flat lat/lng is accepted as an alternative to the location object.
	if spot.Location.Lat == nil && spot.Location.Lng == nil && in.Lat != nil && in.Lng != nil {
		spot.Location = model.Location{Lat: in.Lat, Lng: in.Lng}
	}

	if spot.Location.HasCoordinates() {
		if snapshot := s.forecast.Fetch(ctx, *spot.Location.Lat, *spot.Location.Lng); snapshot != nil {
			spot.Forecast = snapshot
		}
	}

	if err := s.spots.CreateSpot(ctx, spot); err != nil {
		s.logger.Error("failed to create spot",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating spot: %w", err)
	}

	s.logger.Info("spot created",
		slog.String("id", spot.ID),
		slog.String("name", spot.Name),
		slog.Bool("forecast", spot.Forecast != nil),
	)

	// Re-read so the response carries the populated owner.
	return s.spots.GetSpotByID(ctx, spot.ID)
}

// Get returns a spot with its comments and the derived average rating.
// A missing spot returns not-found before any comment list is built.
func (s *SpotService) Get(ctx context.Context, id string) (*model.SpotDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "spot ID is required")
	}

	spot, err := s.spots.GetSpotByID(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListCommentsBySpot(ctx, id)
	if err != nil {
		s.logger.Error("failed to list spot comments",
			slog.String("spotID", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing comments for spot %s: %w", id, err)
	}

	return &model.SpotDetail{
		SurfSpot: *spot,
		Comments: comments,
		Rating:   AverageRating(comments),
	}, nil
}

// List returns all spots, owners populated.
func (s *SpotService) List(ctx context.Context) ([]model.SurfSpot, error) {
	spots, err := s.spots.ListSpots(ctx)
	if err != nil {
		s.logger.Error("failed to list spots", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing spots: %w", err)
	}
	return spots, nil
}

// Update applies a partial update to a spot. Admin only.
//
// Forecast refresh policy:
//   - skipRefresh set: the provider is not called and the stored snapshot is
//     preserved untouched (SpotInput carries no forecast field, so any
//     forecast data in the request body is discarded structurally).
//   - otherwise, if the request supplied a location with both coordinates,
//     the provider is called and a successful fetch replaces the snapshot
//     wholesale; a failed fetch leaves the old snapshot in place and the
//     update still goes through.
//   - no location in the request: no provider call.
func (s *SpotService) Update(ctx context.Context, actor *model.User, id string, in SpotInput, skipRefresh bool) (*model.SurfSpot, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("not authorized to update spots")
	}

	spot, err := s.spots.GetSpotByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "name is required")
		}
		spot.Name = name
	}
	if err := applyInput(spot, in); err != nil {
		return nil, err
	}

	if !skipRefresh && in.Location != nil && in.Location.HasCoordinates() {
		if snapshot := s.forecast.Fetch(ctx, *in.Location.Lat, *in.Location.Lng); snapshot != nil {
			spot.Forecast = snapshot
		}
	}

	if err := s.spots.UpdateSpot(ctx, spot); err != nil {
		s.logger.Error("failed to update spot",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating spot: %w", err)
	}

	s.logger.Info("spot updated",
		slog.String("id", id),
		slog.Bool("skipForecastRefresh", skipRefresh),
	)

	return s.spots.GetSpotByID(ctx, id)
}

// Delete removes a spot and all of its comments. Admin only.
func (s *SpotService) Delete(ctx context.Context, actor *model.User, id string) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("not authorized to delete spots")
	}

	if err := s.spots.DeleteSpot(ctx, id); err != nil {
		return err
	}

	s.logger.Info("spot deleted", slog.String("id", id))
	return nil
}

// AverageRating derives the display rating for a spot: the mean of all
// numeric comment ratings. Replies never carry a rating, so they are
// excluded by construction. Returns nil when no rated comments exist —
// the field is omitted from responses, not serialized as zero.
func AverageRating(comments []model.Comment) *float64 {
	var sum, n int
	for _, c := range comments {
		if c.Rating != nil {
			sum += *c.Rating
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

// applyInput copies the set fields of in onto spot, validating enums.
// Name and location are handled by the callers; empty strings for the
// descriptive fields are ignored the way the original API ignored falsy
// values.
func applyInput(spot *model.SurfSpot, in SpotInput) error {
	if in.Description != nil {
		spot.Description = strings.TrimSpace(*in.Description)
	}
	if in.ImageURL != nil {
		spot.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Region != nil {
		spot.Region = strings.TrimSpace(*in.Region)
	}
	if in.Country != nil {
		spot.Country = strings.TrimSpace(*in.Country)
	}
	if in.SwellDirection != nil {
		spot.SwellDirection = strings.TrimSpace(*in.SwellDirection)
	}
	if in.WindDirection != nil {
		spot.WindDirection = strings.TrimSpace(*in.WindDirection)
	}
	if in.Season != nil {
		spot.Season = *in.Season
	}
	if in.Location != nil {
		spot.Location = *in.Location
	}

	if in.Difficulty != nil && *in.Difficulty != "" {
		if !slices.Contains(model.Difficulties, *in.Difficulty) {
			return apperror.ValidationFailed("difficulty", "invalid difficulty")
		}
		spot.Difficulty = *in.Difficulty
	}
	if in.WaveType != nil && *in.WaveType != "" {
		if !slices.Contains(model.WaveTypes, *in.WaveType) {
			return apperror.ValidationFailed("waveType", "invalid wave type")
		}
		spot.WaveType = *in.WaveType
	}
	if in.Tide != nil && *in.Tide != "" {
		if !slices.Contains(model.Tides, *in.Tide) {
			return apperror.ValidationFailed("tide", "invalid tide")
		}
		spot.Tide = *in.Tide
	}
	if in.CrowdFactor != nil && *in.CrowdFactor != "" {
		if !slices.Contains(model.CrowdFactors, *in.CrowdFactor) {
			return apperror.ValidationFailed("crowdFactor", "invalid crowd factor")
		}
		spot.CrowdFactor = *in.CrowdFactor
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
