package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// echoUserID records what the inner handler saw.
func echoUserID(sawRequest *bool, gotUserID *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*sawRequest = true
		if id, ok := UserIDFromContext(r.Context()); ok {
			*gotUserID = id
		}
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := newTestTokenService(t)
	signed, err := tokens.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var sawRequest bool
	var gotUserID string
	handler := RequireAuth(tokens)(echoUserID(&sawRequest, &gotUserID))

	r := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: signed})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if !sawRequest {
		t.Fatal("inner handler was not reached")
	}
	if gotUserID != "user-123" {
		t.Errorf("userID in context = %q, want %q", gotUserID, "user-123")
	}
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	tokens := newTestTokenService(t)

	var sawRequest bool
	var gotUserID string
	handler := RequireAuth(tokens)(echoUserID(&sawRequest, &gotUserID))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/user", nil))

	if sawRequest {
		t.Error("inner handler reached without a session")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if got := w.Body.String(); got != `{"error":"not authenticated"}` {
		t.Errorf("body = %s", got)
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tokens := newTestTokenService(t)

	var sawRequest bool
	var gotUserID string
	handler := RequireAuth(tokens)(echoUserID(&sawRequest, &gotUserID))

	r := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if sawRequest {
		t.Error("inner handler reached with a garbage token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := newTestTokenService(t)
	signed, err := tokens.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantUserID string
	}{
		{"no cookie", nil, ""},
		{"invalid token", &http.Cookie{Name: SessionCookie, Value: "garbage"}, ""},
		{"valid token", &http.Cookie{Name: SessionCookie, Value: signed}, "user-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sawRequest bool
			var gotUserID string
			handler := OptionalAuth(tokens)(echoUserID(&sawRequest, &gotUserID))

			r := httptest.NewRequest(http.MethodGet, "/api/spots", nil)
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if !sawRequest {
				t.Fatal("inner handler was not reached")
			}
			if gotUserID != tt.wantUserID {
				t.Errorf("userID = %q, want %q", gotUserID, tt.wantUserID)
			}
			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
		})
	}
}
