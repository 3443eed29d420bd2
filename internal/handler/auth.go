package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/breakline/surfspots/internal/auth"
	"github.com/breakline/surfspots/internal/model"
	"github.com/breakline/surfspots/internal/repository"
)

// AuthHandler manages the Google OAuth sign-in flow and the current-user
// endpoint.
type AuthHandler struct {
	google         *auth.GoogleProvider
	tokens         *auth.TokenService
	users          repository.UserRepository
	frontendOrigin string // where to send the browser after sign-in
	logger         *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	google *auth.GoogleProvider,
	tokens *auth.TokenService,
	users repository.UserRepository,
	frontendOrigin string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		google:         google,
		tokens:         tokens,
		users:          users,
		frontendOrigin: frontendOrigin,
		logger:         logger,
	}
}

// HandleGoogleLogin redirects the browser to Google's consent page.
//
// HTTP: GET /auth/google/login
//
// A random state value goes into a short-lived cookie; the callback
// verifies it so a CSRF'd flow can't complete.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the sign-in flow.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
//
// The account is created on first sign-in and its profile fields refreshed
// on every return visit; the role is never touched here.
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid OAuth state"})
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid OAuth state"})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, h.frontendOrigin+"?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing OAuth code"})
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: Google exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "authentication failed"})
		return
	}

	user := &model.User{
		Email:    gUser.Email,
		Username: gUser.Name,
		Image:    gUser.Picture,
		Provider: "google",
	}
	if err := h.users.UpsertByEmail(r.Context(), user); err != nil {
		h.logger.Error("auth callback: upsert failed",
			slog.String("email", gUser.Email),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "authentication failed"})
		return
	}

	h.logger.Info("user authenticated",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	tokenStr, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("auth callback: token generation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "authentication failed"})
		return
	}

	// HttpOnly so scripts can't read the token; SameSite=Lax so it still
	// rides along on the top-level redirect back to the frontend.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.frontendOrigin, http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleCurrentUser returns the signed-in user's record.
//
// HTTP: GET /api/user (session required)
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
