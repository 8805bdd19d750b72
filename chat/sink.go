package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/onnwee/chat-translator/telemetry"
	"github.com/onnwee/chat-translator/translate"
)

// Sink receives relayed translations. Exactly one Emit happens per
// successful, non-redundant translation.
type Sink interface {
	Emit(ctx context.Context, m Message, res translate.Result) error
}

// FormatRelayMessage renders the line posted back to chat:
//
//	[by author] translated text (tr > en)
func FormatRelayMessage(m Message, res translate.Result) string {
	return fmt.Sprintf("[by %s] %s (%s > %s)", m.Author, res.TranslatedText, res.SourceLanguage, res.TargetLanguage)
}

// ConsoleSink writes translations to the log. Used in read-only mode.
type ConsoleSink struct{}

func (ConsoleSink) Emit(ctx context.Context, m Message, res translate.Result) error {
	telemetry.LoggerWithCorr(ctx).Info("translation",
		slog.String("channel", m.Channel),
		slog.String("author", m.Author),
		slog.String("from", res.SourceLanguage),
		slog.String("to", res.TargetLanguage),
		slog.String("text", res.TranslatedText))
	return nil
}

// IRCSink posts translations back into the channel, applying the configured
// send rate limit. Rate-limited translations are dropped, not queued.
type IRCSink struct {
	Channel string
	// Say sends a message to a channel (twitch.Client.Say).
	Say func(channel, text string)
	// MinInterval is the minimum time between sends (0 = unlimited).
	MinInterval time.Duration

	mu       sync.Mutex
	lastSend time.Time
}

func (s *IRCSink) Emit(ctx context.Context, m Message, res translate.Result) error {
	s.mu.Lock()
	if s.MinInterval > 0 && time.Since(s.lastSend) < s.MinInterval {
		s.mu.Unlock()
		telemetry.SendsRateLimited.Inc()
		slog.Debug("send rate limited", slog.String("channel", s.Channel))
		return nil
	}
	s.lastSend = time.Now()
	s.mu.Unlock()

	s.Say(s.Channel, FormatRelayMessage(m, res))
	return nil
}
