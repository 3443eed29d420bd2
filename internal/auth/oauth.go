package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUser is the portion of Google's userinfo response we care about.
// Google returns a larger object — we only unmarshal the fields we need.
type GoogleUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"` // avatar URL
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow. The code-for-token exchange happens server-to-server with the
// client secret; the access token never reaches the browser.
type GoogleProvider struct {
	config      *oauth2.Config
	userinfoURL string
}

// NewGoogleProvider creates a GoogleProvider with the given credentials.
// callbackURL must exactly match an authorized redirect URI configured in
// the Google Cloud console for this OAuth client.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userinfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
// The state value is verified on callback to block CSRF'd flows.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for the
// user's Google profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// Authorization header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo API returned status %d", resp.StatusCode)
	}

	var gUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gUser); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if gUser.Email == "" {
		return nil, fmt.Errorf("auth: Google returned a user with no email")
	}

	return &gUser, nil
}
