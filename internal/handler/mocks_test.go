package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/breakline/surfspots/internal/apperror"
	"github.com/breakline/surfspots/internal/auth"
	"github.com/breakline/surfspots/internal/model"
	"github.com/breakline/surfspots/internal/service"
)

// In-memory repositories backing the real services, so handler tests cover
// the full handler -> service path without a database.

type memStore struct {
	users    map[string]*model.User
	spots    map[string]*model.SurfSpot
	comments map[string]*model.Comment
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*model.User),
		spots:    make(map[string]*model.SurfSpot),
		comments: make(map[string]*model.Comment),
	}
}

func (m *memStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *memStore) UpsertByEmail(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			user.ID = u.ID
			user.Role = u.Role
			stored := *user
			m.users[u.ID] = &stored
			return nil
		}
	}
	user.ID = m.id("user")
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *memStore) CreateSpot(_ context.Context, spot *model.SurfSpot) error {
	spot.ID = m.id("spot")
	stored := *spot
	m.spots[spot.ID] = &stored
	return nil
}

func (m *memStore) GetSpotByID(_ context.Context, id string) (*model.SurfSpot, error) {
	s, ok := m.spots[id]
	if !ok {
		return nil, apperror.NotFound("spot", id)
	}
	result := *s
	return &result, nil
}

func (m *memStore) ListSpots(_ context.Context) ([]model.SurfSpot, error) {
	result := []model.SurfSpot{}
	for _, s := range m.spots {
		result = append(result, *s)
	}
	return result, nil
}

func (m *memStore) UpdateSpot(_ context.Context, spot *model.SurfSpot) error {
	if _, ok := m.spots[spot.ID]; !ok {
		return apperror.NotFound("spot", spot.ID)
	}
	stored := *spot
	m.spots[spot.ID] = &stored
	return nil
}

func (m *memStore) DeleteSpot(_ context.Context, id string) error {
	if _, ok := m.spots[id]; !ok {
		return apperror.NotFound("spot", id)
	}
	delete(m.spots, id)
	for cid, c := range m.comments {
		if c.SpotID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *memStore) CreateComment(_ context.Context, comment *model.Comment) error {
	comment.ID = m.id("comment")
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *memStore) GetCommentByID(_ context.Context, id string) (*model.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	result := *c
	return &result, nil
}

func (m *memStore) ListCommentsBySpot(_ context.Context, spotID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		if c.SpotID == spotID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *memStore) ListComments(_ context.Context) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		result = append(result, *c)
	}
	return result, nil
}

func (m *memStore) UpdateComment(_ context.Context, comment *model.Comment) error {
	if _, ok := m.comments[comment.ID]; !ok {
		return apperror.NotFound("comment", comment.ID)
	}
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *memStore) DeleteCommentCascade(_ context.Context, id string) error {
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

// noForecast is the provider stub for handler tests: no spot here needs a
// real snapshot, the forecast path has its own tests.
type noForecast struct{}

func (noForecast) Fetch(context.Context, float64, float64) *model.ForecastSnapshot { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fixture struct {
	store    *memStore
	spots    *SpotHandler
	comments *CommentHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	logger := testLogger()

	spotService := service.NewSpotService(store, store, noForecast{}, logger)
	commentService := service.NewCommentService(store, store, logger)

	return &fixture{
		store:    store,
		spots:    NewSpotHandler(spotService, store, logger),
		comments: NewCommentHandler(commentService, store, logger),
	}
}

// addUser seeds an account and returns it.
func (f *fixture) addUser(t *testing.T, id, role string) *model.User {
	t.Helper()
	user := &model.User{ID: id, Email: id + "@example.com", Username: id, Role: role}
	f.store.users[id] = user
	return user
}

// addSpot seeds a spot owned by userID.
func (f *fixture) addSpot(t *testing.T, name, userID string) *model.SurfSpot {
	t.Helper()
	spot := &model.SurfSpot{Name: name, Season: []string{}, UserID: userID}
	if err := f.store.CreateSpot(context.Background(), spot); err != nil {
		t.Fatalf("seeding spot: %v", err)
	}
	return spot
}

// asUser simulates what RequireAuth does for an authenticated request.
func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.ContextWithUserID(r.Context(), userID))
}

// doRequest runs a handler and captures the response.
func doRequest(handlerFunc http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handlerFunc(w, r)
	return w
}
