package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/onnwee/chat-translator/twitchapi"
)

// LiveChecker reports live streams for a channel login. Satisfied by
// *twitchapi.HelixClient.
type LiveChecker interface {
	GetStreams(ctx context.Context, login string) ([]twitchapi.StreamMeta, error)
}

// runRelay is a variable so tests can observe relay starts without real IRC.
var runRelay = func(ctx context.Context, r *Relay) error { return r.Run(ctx) }

// StartAutoRelay polls Twitch stream status and keeps the relay connected only
// while the channel is live. Useful for bots that should not idle in offline
// chat. Blocks until ctx is cancelled.
func StartAutoRelay(ctx context.Context, relay *Relay, helix LiveChecker, pollEvery time.Duration) {
	if relay.Channel == "" {
		slog.Info("auto relay: channel empty; abort")
		return
	}
	if pollEvery <= 0 {
		pollEvery = 30 * time.Second
	}

	var running bool
	var relayCancel context.CancelFunc

	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()
	slog.Info("auto relay: started poller", slog.Duration("interval", pollEvery), slog.String("channel", relay.Channel))
	for {
		if ctx.Err() != nil {
			if relayCancel != nil {
				relayCancel()
			}
			return
		}
		streams, err := helix.GetStreams(ctx, relay.Channel)
		switch {
		case err != nil:
			slog.Debug("auto relay: streams req", slog.Any("err", err))
		case len(streams) == 0:
			if running {
				slog.Info("auto relay: stream ended; disconnecting", slog.String("channel", relay.Channel))
				relayCancel()
				relayCancel = nil
				running = false
			}
		case !running:
			slog.Info("auto relay: stream live; connecting",
				slog.String("channel", relay.Channel),
				slog.String("title", streams[0].Title),
				slog.Time("started_at", streams[0].StartedAt))
			relayCtx, cancel := context.WithCancel(ctx)
			relayCancel = cancel
			running = true
			go func() {
				if err := runRelay(relayCtx, relay); err != nil && relayCtx.Err() == nil {
					slog.Warn("auto relay: relay exited", slog.Any("err", err))
				}
			}()
		}
		select {
		case <-ctx.Done():
			if relayCancel != nil {
				relayCancel()
			}
			return
		case <-ticker.C:
		}
	}
}
