package twitchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/onnwee/chat-translator/testutil"
)

// rewriteTransport redirects all requests to a test server while preserving
// path and query, so production URLs can stay hardcoded.
type rewriteTransport struct {
	Transport http.RoundTripper
	host      string
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u, err := url.Parse(rt.host)
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = u.Scheme
	req.URL.Host = u.Host
	return rt.Transport.RoundTrip(req)
}

func TestHelixClient_GetStreams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/helix/streams" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.URL.Query().Get("user_login"); got != "livechannel" {
			t.Fatalf("user_login=%q want livechannel", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("Authorization=%q want Bearer test-token", got)
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{
				"title":      "Live Now",
				"started_at": "2024-10-15T14:30:00Z",
			}},
		})
	}))
	defer server.Close()

	ts := &TokenSource{ClientID: "test-client-id", ClientSecret: "test-secret"}
	ts.SetToken("test-token", time.Now().Add(1*time.Hour))

	client := &HelixClient{
		AppTokenSource: ts,
		ClientID:       "test-client-id",
		HTTPClient: &http.Client{Transport: &rewriteTransport{
			Transport: http.DefaultTransport,
			host:      server.URL,
		}},
	}

	streams, err := client.GetStreams(context.Background(), "livechannel")
	if err != nil {
		t.Fatalf("GetStreams() error = %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("expected 1 stream, got %d", len(streams))
	}
	if streams[0].Title != "Live Now" {
		t.Fatalf("stream title=%q want Live Now", streams[0].Title)
	}
	wantStart := time.Date(2024, 10, 15, 14, 30, 0, 0, time.UTC)
	if !streams[0].StartedAt.Equal(wantStart) {
		t.Fatalf("started_at=%v want %v", streams[0].StartedAt, wantStart)
	}
}

func TestHelixClient_GetStreamsOffline(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	mock.MockStreamsResponse([]map[string]interface{}{})

	ts := &TokenSource{}
	ts.SetToken("test-token", time.Now().Add(1*time.Hour))
	client := &HelixClient{
		AppTokenSource: ts,
		ClientID:       "cid",
		HTTPClient: &http.Client{Transport: &rewriteTransport{
			Transport: http.DefaultTransport,
			host:      mock.URL,
		}},
	}
	streams, err := client.GetStreams(context.Background(), "offlinechannel")
	if err != nil {
		t.Fatalf("GetStreams() error = %v", err)
	}
	if len(streams) != 0 {
		t.Fatalf("expected no streams, got %d", len(streams))
	}
}

func TestHelixClient_GetStreamsEmptyLogin(t *testing.T) {
	client := &HelixClient{AppTokenSource: &TokenSource{}}
	if _, err := client.GetStreams(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty login")
	}
}
