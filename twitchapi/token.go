// Package twitchapi contains minimal helpers to interact with Twitch: app
// access tokens for Helix calls, live-status polling, and user token refresh.
package twitchapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const twitchTokenURL = "https://id.twitch.tv/oauth2/token"

// TokenSource fetches and caches a Twitch app access (client credentials) token.
// NOTE: This token CANNOT be used for IRC chat; chat requires a user (bot) OAuth
// token with chat:read/chat:edit scopes.
type TokenSource struct {
	ClientID     string
	ClientSecret string
	TokenURL     string // defaults to the Twitch token endpoint
	HTTPClient   *http.Client

	mu  sync.Mutex
	src oauth2.TokenSource
}

// Get returns a valid (fresh or cached) app access token.
func (ts *TokenSource) Get(ctx context.Context) (string, error) {
	src, err := ts.source()
	if err != nil {
		return "", err
	}
	tok, err := src.Token()
	if err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", errors.New("empty access_token in twitch response")
	}
	return tok.AccessToken, nil
}

// SetToken primes the cache with a known token, mainly for tests.
func (ts *TokenSource) SetToken(token string, expiry time.Time) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.src = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, Expiry: expiry})
}

func (ts *TokenSource) source() (oauth2.TokenSource, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.src != nil {
		return ts.src, nil
	}
	if ts.ClientID == "" || ts.ClientSecret == "" {
		return nil, errors.New("missing client id/secret for twitch app token")
	}
	tokenURL := ts.TokenURL
	if tokenURL == "" {
		tokenURL = twitchTokenURL
	}
	cc := &clientcredentials.Config{
		ClientID:     ts.ClientID,
		ClientSecret: ts.ClientSecret,
		TokenURL:     tokenURL,
		// Twitch wants credentials in the request body, not basic auth.
		AuthStyle: oauth2.AuthStyleInParams,
	}
	cctx := context.Background()
	if ts.HTTPClient != nil {
		cctx = context.WithValue(cctx, oauth2.HTTPClient, ts.HTTPClient)
	}
	// clientcredentials wraps its source in a reuse source, so caching and
	// refresh-on-expiry come for free.
	ts.src = cc.TokenSource(cctx)
	return ts.src, nil
}
