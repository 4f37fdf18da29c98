package common

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
)

// Splitwise OAuth2 endpoints.
var SplitwiseEndpoint = oauth2.Endpoint{
	AuthURL:   "https://secure.splitwise.com/oauth/authorize",
	TokenURL:  "https://secure.splitwise.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// AuthClient defines the ability to refresh an OAuth2 token.
type AuthClient interface {
	// RefreshToken attempts to refresh using the given refresh token string.
	// Returns a new *oauth2.Token on success, or an error if refresh fails.
	RefreshToken(refreshToken string) (*oauth2.Token, error)
}

// Credentials is what we know about how to authenticate. Either a bearer
// token (a personal API key or an OAuth access token) or a full refresh
// triple must be present.
type Credentials struct {
	AccessToken  string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// ErrNoCredentials is returned when neither a token nor refresh credentials
// were configured.
var ErrNoCredentials = errors.New("no Splitwise credentials: set an API key, an OAuth access token or refresh credentials")

func (c Credentials) canRefresh() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// NewTokenSource picks the token source for creds. Refresh credentials win
// over a static token so an expired access token can be replaced.
func NewTokenSource(ctx context.Context, creds Credentials, httpClient *http.Client) (oauth2.TokenSource, error) {
	if creds.canRefresh() {
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		initial := &oauth2.Token{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken}
		return oauth2.ReuseTokenSource(nil, oauthConfig(creds).TokenSource(ctx, initial)), nil
	}
	if creds.AccessToken == "" {
		return nil, ErrNoCredentials
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: creds.AccessToken,
		TokenType:   "Bearer",
	}), nil
}

func oauthConfig(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     SplitwiseEndpoint,
	}
}

type oauthRefresher struct {
	ctx  context.Context
	conf *oauth2.Config
}

// NewAuthClient returns an AuthClient backed by the Splitwise token endpoint,
// or nil when creds cannot refresh.
func NewAuthClient(ctx context.Context, creds Credentials) AuthClient {
	if !creds.canRefresh() {
		return nil
	}
	return &oauthRefresher{ctx: ctx, conf: oauthConfig(creds)}
}

func (r *oauthRefresher) RefreshToken(refreshToken string) (*oauth2.Token, error) {
	// an already-expired token forces the source to hit the token endpoint
	return r.conf.TokenSource(r.ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
}
