// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required credentials (Twitch chat, Azure Translator), use ValidateChatReady
// and ValidateTranslatorReady.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAllowedLanguages is the language filter applied when ALLOWED_LANGUAGES is unset.
const DefaultAllowedLanguages = "tr,ko,ru,zh"

type Config struct {
	// Twitch
	TwitchChannel      string
	TwitchBotUsername  string
	TwitchOAuthToken   string
	TwitchClientID     string
	TwitchClientSecret string

	// Azure Translator
	AzureKey      string
	AzureEndpoint string
	AzureRegion   string

	// Relay behavior
	TargetLanguage   string
	AllowedLanguages []string
	MinMessageLength int
	RateLimitDelay   time.Duration

	// Database (optional; empty disables translation history)
	DBDsn string
}

// Load reads environment variables and applies defaults. It doesn't fail if Twitch or
// Azure creds are missing; use the Validate* helpers when you require them. The optional
// args are positional CLI overrides: args[0] is the channel, args[1] an OAuth token.
func Load(args ...string) (*Config, error) {
	cfg := &Config{}

	cfg.TwitchChannel = strings.ToLower(os.Getenv("TWITCH_CHANNEL"))
	cfg.TwitchBotUsername = strings.ToLower(os.Getenv("TWITCH_BOT_USERNAME"))
	cfg.TwitchOAuthToken = os.Getenv("TWITCH_OAUTH_TOKEN")
	cfg.TwitchClientID = os.Getenv("TWITCH_CLIENT_ID")
	cfg.TwitchClientSecret = os.Getenv("TWITCH_CLIENT_SECRET")

	if len(args) >= 1 && args[0] != "" {
		cfg.TwitchChannel = strings.ToLower(strings.TrimPrefix(args[0], "#"))
	}
	if len(args) >= 2 && args[1] != "" {
		cfg.TwitchOAuthToken = args[1]
	}

	// Azure
	cfg.AzureKey = os.Getenv("AZURE_TRANSLATOR_KEY")
	cfg.AzureEndpoint = os.Getenv("AZURE_TRANSLATOR_ENDPOINT")
	if cfg.AzureEndpoint == "" {
		cfg.AzureEndpoint = "https://api.cognitive.microsofttranslator.com"
	}
	cfg.AzureRegion = os.Getenv("AZURE_TRANSLATOR_REGION")

	// Relay
	cfg.TargetLanguage = strings.ToLower(os.Getenv("TARGET_LANGUAGE"))
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "en"
	}
	allowed := os.Getenv("ALLOWED_LANGUAGES")
	if allowed == "" {
		allowed = DefaultAllowedLanguages
	}
	for _, code := range strings.Split(allowed, ",") {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			cfg.AllowedLanguages = append(cfg.AllowedLanguages, code)
		}
	}

	cfg.MinMessageLength = 2
	if v := os.Getenv("MIN_MESSAGE_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid MIN_MESSAGE_LENGTH: %q", v)
		}
		cfg.MinMessageLength = n
	}

	if v := os.Getenv("RATE_LIMIT_DELAY"); v != "" {
		// Accept either a bare number of seconds (legacy) or a Go duration.
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RateLimitDelay = time.Duration(n) * time.Second
		} else if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.RateLimitDelay = d
		} else {
			return nil, fmt.Errorf("invalid RATE_LIMIT_DELAY: %q", v)
		}
	}

	// DB
	cfg.DBDsn = os.Getenv("DB_DSN")

	return cfg, nil
}

// ValidateChatReady checks required fields for joining chat. A bot username and
// OAuth token are only needed for sending; reading works anonymously.
func (c *Config) ValidateChatReady() error {
	if c.TwitchChannel == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL (or channel argument)")
	}
	return nil
}

// ValidateTranslatorReady checks required fields for calling Azure Translator.
func (c *Config) ValidateTranslatorReady() error {
	if c.AzureKey == "" {
		return fmt.Errorf("missing azure env: require AZURE_TRANSLATOR_KEY")
	}
	return nil
}

// CanSend reports whether the config carries credentials to write back to chat.
func (c *Config) CanSend() bool {
	return c.TwitchOAuthToken != "" && c.TwitchBotUsername != ""
}
