package chat

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/chat-translator/db"
	"github.com/onnwee/chat-translator/language"
	"github.com/onnwee/chat-translator/telemetry"
	"github.com/onnwee/chat-translator/translate"
)

// Message is one incoming chat message.
type Message struct {
	Author    string
	Text      string
	Channel   string
	Timestamp time.Time
}

// Skip reasons produced by the relay itself, past the pre-detection filter.
const (
	skipDetectFailed  = "detect_failed"
	skipNotAllowed    = "language_not_allowed"
	skipTranslateFail = "translate_failed"
	skipRedundant     = "redundant"
)

// Relay wires the pipeline: IRC connection, filter, detector, translator, sink.
type Relay struct {
	Channel     string
	BotUsername string
	OAuthToken  string

	Filter     language.Filter
	Detector   language.Detector
	Allowed    language.AllowedSet
	Translator translate.Translator
	// Sink receives relayed translations. When nil, Run picks one per
	// connection: the chat itself if credentials allow sending, else the log.
	Sink Sink

	// RateLimitDelay is the minimum time between chat sends (0 = unlimited).
	RateLimitDelay time.Duration
	// ReconnectDelay is the wait between connection attempts (default 5s).
	ReconnectDelay time.Duration

	// History, when non-nil, receives every relayed translation.
	History *sql.DB
}

// Run connects to chat and processes messages until ctx is cancelled. The
// connection is re-established after abnormal disconnects.
func (r *Relay) Run(ctx context.Context) error {
	delay := r.ReconnectDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	for {
		err := r.connectOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("chat connection lost; reconnecting", slog.Any("err", err), slog.Duration("delay", delay), slog.String("channel", r.Channel))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (r *Relay) connectOnce(ctx context.Context) error {
	var client *twitch.Client
	if r.OAuthToken != "" && r.BotUsername != "" {
		client = twitch.NewClient(r.BotUsername, ensureOAuthPrefix(r.OAuthToken))
	} else {
		client = twitch.NewAnonymousClient()
	}

	sink := r.Sink
	if sink == nil {
		if r.OAuthToken != "" && r.BotUsername != "" {
			sink = &IRCSink{Channel: r.Channel, Say: client.Say, MinInterval: r.RateLimitDelay}
		} else {
			sink = ConsoleSink{}
		}
	}

	client.OnConnect(func() {
		telemetry.UpdateConnectedGauge(true)
		slog.Info("joined chat", slog.String("channel", r.Channel), slog.Bool("can_send", r.OAuthToken != ""))
	})
	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		m := Message{
			Author:    msg.User.Name,
			Text:      msg.Message,
			Channel:   msg.Channel,
			Timestamp: msg.Time,
		}
		r.process(ctx, m, sink)
	})

	// Close the client when the context is cancelled.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if err := client.Disconnect(); err != nil {
				slog.Debug("disconnect", slog.Any("err", err))
			}
		case <-done:
		}
	}()
	defer close(done)

	client.Join(r.Channel)
	telemetry.ConnectAttempts.Inc()
	err := client.Connect()
	telemetry.UpdateConnectedGauge(false)
	return err
}

// process runs one message through the pipeline. Every failure logs and skips
// the message; nothing here retries.
func (r *Relay) process(ctx context.Context, m Message, sink Sink) {
	telemetry.MessagesReceived.Inc()

	if reason, skip := r.Filter.ShouldSkip(m.Author, m.Text); skip {
		telemetry.CountSkip(reason)
		slog.Debug("message skipped", slog.String("reason", reason), slog.String("author", m.Author))
		return
	}

	ctx, span := telemetry.StartSpan(ctx, "chat", "relay.process",
		attribute.String("chat.channel", m.Channel),
		attribute.String("chat.author", m.Author))
	defer span.End()

	detected, err := r.Detector.Detect(strings.TrimSpace(m.Text))
	if err != nil {
		telemetry.CountSkip(skipDetectFailed)
		slog.Debug("message skipped", slog.String("reason", skipDetectFailed), slog.Any("err", err))
		return
	}
	span.SetAttributes(attribute.String("chat.detected_lang", detected))

	// The membership check gates the translation call; nothing below runs
	// for messages outside the allowed set.
	if !r.Allowed.Contains(detected) {
		telemetry.CountSkip(skipNotAllowed)
		slog.Debug("message skipped", slog.String("reason", skipNotAllowed), slog.String("lang", detected))
		return
	}

	var res translate.Result
	var terr error
	telemetry.TimeFunc(telemetry.TranslationDuration, func() {
		res, terr = r.Translator.Translate(ctx, m.Text, detected)
	})
	if terr != nil {
		telemetry.TranslationsFailed.Inc()
		telemetry.RecordError(span, terr)
		slog.Warn("translation failed", slog.Any("err", terr), slog.String("lang", detected))
		return
	}
	telemetry.TranslationsOK.Inc()

	if translate.IsRedundant(m.Text, res.TranslatedText) {
		telemetry.CountSkip(skipRedundant)
		slog.Debug("message skipped", slog.String("reason", skipRedundant))
		return
	}

	if err := sink.Emit(ctx, m, res); err != nil {
		telemetry.RecordError(span, err)
		slog.Warn("emit failed", slog.Any("err", err))
		return
	}
	telemetry.SendsOK.Inc()
	telemetry.SetSpanSuccess(span)

	if r.History != nil {
		rec := db.TranslationRecord{
			Channel:        m.Channel,
			Author:         m.Author,
			SourceText:     m.Text,
			SourceLang:     res.SourceLanguage,
			TargetLang:     res.TargetLanguage,
			TranslatedText: res.TranslatedText,
			MessageAt:      m.Timestamp,
		}
		if err := db.InsertTranslation(ctx, r.History, rec); err != nil {
			slog.Warn("failed to insert translation history", slog.Any("err", err))
		}
	}
}

func ensureOAuthPrefix(token string) string {
	if strings.HasPrefix(token, "oauth:") {
		return token
	}
	return "oauth:" + token
}
