package twitchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HelixClient provides the single Helix call the relay needs: live-status
// lookup for a channel (auto mode).
type HelixClient struct {
	AppTokenSource *TokenSource
	ClientID       string
	HTTPClient     *http.Client
}

func (hc *HelixClient) http() *http.Client {
	if hc.HTTPClient != nil {
		return hc.HTTPClient
	}
	return http.DefaultClient
}

// StreamMeta describes a live stream returned by /helix/streams.
type StreamMeta struct {
	Title     string
	StartedAt time.Time
}

// GetStreams returns live streams for a channel login. An empty slice means
// the channel is offline.
func (hc *HelixClient) GetStreams(ctx context.Context, login string) ([]StreamMeta, error) {
	if login == "" {
		return nil, fmt.Errorf("login empty")
	}
	tok, err := hc.AppTokenSource.Get(ctx)
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.twitch.tv/helix/streams", nil)
	q := req.URL.Query()
	q.Set("user_login", login)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Client-Id", hc.ClientID)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := hc.http().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("helix streams request failed: %s", resp.Status)
	}
	var body struct {
		Data []struct {
			Title     string    `json:"title"`
			StartedAt time.Time `json:"started_at"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	out := make([]StreamMeta, 0, len(body.Data))
	for _, s := range body.Data {
		out = append(out, StreamMeta{Title: s.Title, StartedAt: s.StartedAt})
	}
	return out, nil
}
