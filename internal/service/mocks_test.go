package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/breakline/surfspots/internal/apperror"
	"github.com/breakline/surfspots/internal/model"
)

// In-memory fakes for the repository interfaces. Hand-written rather than
// generated: the service layer is small enough that a map-backed fake is
// clearer than a mocking library, and it keeps tests free of database I/O.

type mockSpotRepo struct {
	spots  map[string]*model.SurfSpot
	nextID int
}

func newMockSpotRepo() *mockSpotRepo {
	return &mockSpotRepo{spots: make(map[string]*model.SurfSpot)}
}

func (m *mockSpotRepo) CreateSpot(_ context.Context, spot *model.SurfSpot) error {
	m.nextID++
	spot.ID = fmt.Sprintf("spot-%d", m.nextID)
	now := time.Now()
	spot.CreatedAt = now
	spot.UpdatedAt = now
	stored := *spot
	m.spots[spot.ID] = &stored
	return nil
}

func (m *mockSpotRepo) GetSpotByID(_ context.Context, id string) (*model.SurfSpot, error) {
	spot, ok := m.spots[id]
	if !ok {
		return nil, apperror.NotFound("spot", id)
	}
	result := *spot
	return &result, nil
}

func (m *mockSpotRepo) ListSpots(_ context.Context) ([]model.SurfSpot, error) {
	result := make([]model.SurfSpot, 0, len(m.spots))
	for _, s := range m.spots {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSpotRepo) UpdateSpot(_ context.Context, spot *model.SurfSpot) error {
	if _, ok := m.spots[spot.ID]; !ok {
		return apperror.NotFound("spot", spot.ID)
	}
	stored := *spot
	m.spots[spot.ID] = &stored
	return nil
}

func (m *mockSpotRepo) DeleteSpot(_ context.Context, id string) error {
	if _, ok := m.spots[id]; !ok {
		return apperror.NotFound("spot", id)
	}
	delete(m.spots, id)
	return nil
}

type mockCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]*model.Comment)}
}

func (m *mockCommentRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	m.nextID++
	comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockCommentRepo) GetCommentByID(_ context.Context, id string) (*model.Comment, error) {
	comment, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	result := *comment
	return &result, nil
}

func (m *mockCommentRepo) ListCommentsBySpot(_ context.Context, spotID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		if c.SpotID == spotID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCommentRepo) ListComments(_ context.Context) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCommentRepo) UpdateComment(_ context.Context, comment *model.Comment) error {
	if _, ok := m.comments[comment.ID]; !ok {
		return apperror.NotFound("comment", comment.ID)
	}
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockCommentRepo) DeleteCommentCascade(_ context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	for cid, c := range m.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(m.comments, cid)
		}
	}
	delete(m.comments, id)
	return nil
}

// stubForecaster returns a canned snapshot (or nil, simulating provider
// failure) and records whether it was called.
type stubForecaster struct {
	snapshot *model.ForecastSnapshot
	called   bool
	lat, lng float64
}

func (f *stubForecaster) Fetch(_ context.Context, lat, lng float64) *model.ForecastSnapshot {
	f.called = true
	f.lat = lat
	f.lng = lng
	return f.snapshot
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testUser(id, role string) *model.User {
	return &model.User{ID: id, Email: id + "@example.com", Username: id, Role: role}
}

func strptr(s string) *string    { return &s }
func intptr(n int) *int          { return &n }
func floatptr(f float64) *float64 { return &f }

func newTestCommentService(t *testing.T) (*CommentService, *mockCommentRepo, *mockSpotRepo) {
	t.Helper()
	comments := newMockCommentRepo()
	spots := newMockSpotRepo()
	svc := NewCommentService(comments, spots, testLogger())
	return svc, comments, spots
}

func newTestSpotService(t *testing.T, f *stubForecaster) (*SpotService, *mockSpotRepo, *mockCommentRepo) {
	t.Helper()
	spots := newMockSpotRepo()
	comments := newMockCommentRepo()
	svc := NewSpotService(spots, comments, f, testLogger())
	return svc, spots, comments
}
