// Command chat-translator is the main entrypoint for the chat translation relay.
// It:
//   - Loads configuration and initializes structured logging.
//   - Optionally connects to Postgres and runs idempotent migrations (history).
//   - Joins the configured Twitch channel, detects the language of every
//     message, and relays Azure translations for allowed languages back to
//     chat or to the log.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status,
//     /translations, and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/onnwee/chat-translator/chat"
	"github.com/onnwee/chat-translator/config"
	"github.com/onnwee/chat-translator/db"
	"github.com/onnwee/chat-translator/language"
	"github.com/onnwee/chat-translator/oauth"
	"github.com/onnwee/chat-translator/server"
	"github.com/onnwee/chat-translator/telemetry"
	"github.com/onnwee/chat-translator/translate"
	"github.com/onnwee/chat-translator/twitchapi"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	// Config; positional args (channel, oauth token) override env.
	cfg, err := config.Load(os.Args[1:]...)
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateChatReady(); err != nil {
		slog.Error("not chat ready", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateTranslatorReady(); err != nil {
		slog.Warn("missing azure credentials; messages will be detected but not translated", slog.Any("err", err))
	}
	if !cfg.CanSend() {
		slog.Info("no oauth token; read-only mode, translations go to the log")
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("chat-translator", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB is optional; without DB_DSN the relay runs stateless.
	var database *sql.DB
	if cfg.DBDsn != "" {
		database, err = db.Connect(cfg.DBDsn)
		if err != nil {
			slog.Error("failed to open db", slog.Any("err", err))
			os.Exit(1)
		}
		defer func() {
			if err := database.Close(); err != nil {
				slog.Error("failed to close database", slog.Any("err", err))
			}
		}()
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Migrate(migrateCtx, database); err != nil {
			cancel()
			slog.Error("failed to migrate db", slog.Any("err", err))
			os.Exit(1)
		}
		cancel()
	} else {
		slog.Info("DB_DSN not set; translation history disabled")
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Seed the oauth_tokens row when a refresh token is supplied, and keep the
	// bot user token fresh for long-lived relays.
	if database != nil && cfg.TwitchClientID != "" && cfg.TwitchClientSecret != "" {
		if rt := os.Getenv("TWITCH_REFRESH_TOKEN"); rt != "" {
			if err := db.UpsertToken(ctx, database, "twitch", cfg.TwitchOAuthToken, rt, "chat:read chat:edit", time.Now().Add(time.Hour)); err != nil {
				slog.Warn("failed to seed oauth token", slog.Any("err", err))
			}
		}
		oauth.StartRefresher(ctx, database, "twitch", 5*time.Minute, 15*time.Minute, func(rctx context.Context, refreshToken string) (string, string, time.Time, string, error) {
			res, err := twitchapi.RefreshToken(rctx, cfg.TwitchClientID, cfg.TwitchClientSecret, refreshToken)
			if err != nil {
				return "", "", time.Time{}, "", err
			}
			return res.AccessToken, res.RefreshToken, twitchapi.ComputeExpiry(res.ExpiresIn), strings.Join(res.Scope, " "), nil
		})
	}

	relay := &chat.Relay{
		Channel:     cfg.TwitchChannel,
		BotUsername: cfg.TwitchBotUsername,
		OAuthToken:  cfg.TwitchOAuthToken,
		Filter: language.Filter{
			MinLength:   cfg.MinMessageLength,
			BotUsername: cfg.TwitchBotUsername,
		},
		Detector: language.NewDetector(),
		Allowed:  language.NewAllowedSet(cfg.AllowedLanguages),
		Translator: &translate.AzureClient{
			Key:            cfg.AzureKey,
			Endpoint:       cfg.AzureEndpoint,
			Region:         cfg.AzureRegion,
			TargetLanguage: cfg.TargetLanguage,
		},
		RateLimitDelay: cfg.RateLimitDelay,
		History:        database,
	}

	slog.Info("starting relay",
		slog.String("channel", cfg.TwitchChannel),
		slog.String("target_lang", cfg.TargetLanguage),
		slog.Any("allowed", cfg.AllowedLanguages),
		slog.Bool("can_send", cfg.CanSend()))

	// Either hold the connection permanently, or only while the channel is
	// live (CHAT_AUTO_START=1, requires app credentials for Helix polling).
	if os.Getenv("CHAT_AUTO_START") == "1" {
		if cfg.TwitchClientID == "" || cfg.TwitchClientSecret == "" {
			slog.Error("CHAT_AUTO_START=1 requires TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET")
			os.Exit(1)
		}
		pollEvery := 30 * time.Second
		if v := os.Getenv("CHAT_AUTO_POLL_INTERVAL"); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				pollEvery = d
			}
		}
		ts := &twitchapi.TokenSource{ClientID: cfg.TwitchClientID, ClientSecret: cfg.TwitchClientSecret}
		helix := &twitchapi.HelixClient{AppTokenSource: ts, ClientID: cfg.TwitchClientID}
		go chat.StartAutoRelay(ctx, relay, helix, pollEvery)
	} else {
		go func() {
			if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("relay exited", slog.Any("err", err))
			}
		}()
	}

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/status/metrics)
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	go func() {
		if err := server.Start(ctx, database, cfg.TwitchChannel, addr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
