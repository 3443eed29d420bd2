package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values we store.
type contextKey string

const userIDKey contextKey = "userID"

// SessionCookie is the name of the HttpOnly cookie carrying the JWT.
const SessionCookie = "token"

// RequireAuth enforces authentication on protected routes.
//
// It reads the JWT from the session cookie, validates it, and stores the
// userID in the request context. A missing or invalid token stops the chain
// with 401 and the API's standard error shape.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"not authenticated"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth extracts the user identity when a valid token is present but
// never blocks the request. Public routes use this so anonymous reads work
// while signed-in requests still know who is asking.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				r = r.WithContext(ContextWithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithUserID stores the authenticated user's ID in the context.
// Exported so handler tests can simulate an authenticated request without
// running the full middleware chain.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the session cookie and validates the JWT inside it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
