package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/breakline/surfspots/internal/auth"
	"github.com/breakline/surfspots/internal/model"
)

func newAuthFixture(t *testing.T) (*AuthHandler, *memStore) {
	t.Helper()
	store := newMemStore()
	tokens, err := auth.NewTokenService("test-secret-key-for-jwt-signing")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	google := auth.NewGoogleProvider("client-id", "client-secret", "http://localhost:8080/auth/google/callback")
	h := NewAuthHandler(google, tokens, store, "http://localhost:3000", testLogger())
	return h, store
}

func TestHandleGoogleLogin(t *testing.T) {
	h, _ := newAuthFixture(t)

	w := doRequest(h.HandleGoogleLogin, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)

	// The redirect carries the same state value the cookie does.
	var stateCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	if assert.NotNil(t, stateCookie, "state cookie not set") {
		assert.True(t, stateCookie.HttpOnly)
		location, err := url.Parse(w.Header().Get("Location"))
		assert.NoError(t, err)
		assert.Equal(t, stateCookie.Value, location.Query().Get("state"))
	}
}

func TestHandleGoogleCallback_MissingState(t *testing.T) {
	h, _ := newAuthFixture(t)

	w := doRequest(h.HandleGoogleCallback,
		httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=xyz", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGoogleCallback_StateMismatch(t *testing.T) {
	h, _ := newAuthFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=evil", nil)
	r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	w := doRequest(h.HandleGoogleCallback, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGoogleCallback_UserDenied(t *testing.T) {
	h, _ := newAuthFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied&state=s1", nil)
	r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	w := doRequest(h.HandleGoogleCallback, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "http://localhost:3000?auth=denied", w.Header().Get("Location"))
}

func TestHandleLogout(t *testing.T) {
	h, _ := newAuthFixture(t)

	w := doRequest(h.HandleLogout, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			cleared = c
		}
	}
	if assert.NotNil(t, cleared, "session cookie not cleared") {
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	}
}

func TestHandleCurrentUser(t *testing.T) {
	h, store := newAuthFixture(t)
	store.users["alice"] = &model.User{ID: "alice", Email: "alice@example.com", Username: "alice", Role: model.RoleUser}

	r := asUser(httptest.NewRequest(http.MethodGet, "/api/user", nil), "alice")
	w := doRequest(h.HandleCurrentUser, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var user model.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestHandleCurrentUser_NoSession(t *testing.T) {
	h, _ := newAuthFixture(t)

	w := doRequest(h.HandleCurrentUser, httptest.NewRequest(http.MethodGet, "/api/user", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "not authenticated"))
}
