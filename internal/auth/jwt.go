// Package auth provides the Google OAuth sign-in flow, JWT session tokens,
// and the middleware that guards protected routes.
//
// Flow: the browser is sent to Google's consent page; Google calls back with
// a code; we exchange it for the user's profile, upsert the account, and set
// a signed JWT in an HttpOnly cookie. Subsequent requests present the cookie
// and the middleware resolves it to a user ID — no server-side session store.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "surfspots"

// sessionDuration is how long a sign-in lasts before the user has to go
// through the OAuth flow again.
const sessionDuration = 24 * time.Hour

// TokenService handles JWT creation and validation. It holds the HMAC
// secret used to sign and verify tokens.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The "sub" claim carries the internal user ID;
// role is deliberately NOT in the token — authorization decisions re-read
// the user row so promotions and demotions take effect immediately.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given userID.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, sessionDuration)
}

// GenerateWithDuration creates a token with a custom expiry. Used in tests
// to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string, returning the userID from the
// "sub" claim. The algorithm is pinned to HS256 and the issuer is checked,
// so tokens from other apps (or unsigned tokens) are rejected.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
