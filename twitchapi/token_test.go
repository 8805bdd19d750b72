package twitchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onnwee/chat-translator/testutil"
)

func TestTokenSourceGet(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", r.Form.Get("grant_type"))
		}
		if r.Form.Get("client_id") != "test-client-id" {
			t.Errorf("client_id = %q, want test-client-id (creds must be in body)", r.Form.Get("client_id"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "app-token",
			"expires_in":   3600,
			"token_type":   "bearer",
		})
	}))
	defer server.Close()

	ts := &TokenSource{ClientID: "test-client-id", ClientSecret: "secret", TokenURL: server.URL}
	tok, err := ts.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if tok != "app-token" {
		t.Errorf("token = %q, want app-token", tok)
	}

	// Second call must come from the cache, not the server.
	if _, err := ts.Get(context.Background()); err != nil {
		t.Fatalf("cached Get() error: %v", err)
	}
	if requests != 1 {
		t.Errorf("token endpoint hit %d times, want 1", requests)
	}
}

func TestTokenSourceWithMockServer(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	mock.MockOAuthTokenResponse("mock-app-token", 3600)

	ts := &TokenSource{ClientID: "cid", ClientSecret: "sec", TokenURL: mock.URL + "/oauth2/token"}
	tok, err := ts.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if tok != "mock-app-token" {
		t.Errorf("token = %q, want mock-app-token", tok)
	}
}

func TestTokenSourceMissingCreds(t *testing.T) {
	ts := &TokenSource{}
	if _, err := ts.Get(context.Background()); err == nil {
		t.Fatalf("expected error without client id/secret")
	}
}

func TestTokenSourceSetToken(t *testing.T) {
	ts := &TokenSource{}
	ts.SetToken("primed", time.Now().Add(time.Hour))
	tok, err := ts.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if tok != "primed" {
		t.Errorf("token = %q, want primed", tok)
	}
}
