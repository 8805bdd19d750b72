// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	MessagesReceived    prometheus.Counter
	MessagesSkipped     *prometheus.CounterVec // labelled by reason
	TranslationsOK      prometheus.Counter
	TranslationsFailed  prometheus.Counter
	SendsOK             prometheus.Counter
	SendsRateLimited    prometheus.Counter
	ConnectAttempts     prometheus.Counter

	// Histograms (seconds)
	TranslationDuration prometheus.Observer

	// Gauges
	ConnectedGauge prometheus.Gauge // 1=connected to IRC, 0=not
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_messages_received_total", Help: "Number of chat messages received"})
		MessagesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{Name: "chat_messages_skipped_total", Help: "Number of chat messages skipped before translation"}, []string{"reason"})
		TranslationsOK = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_translations_total", Help: "Number of successful translations"})
		TranslationsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_translation_errors_total", Help: "Number of failed translation calls"})
		SendsOK = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_sends_total", Help: "Number of translations emitted to the sink"})
		SendsRateLimited = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_sends_rate_limited_total", Help: "Number of translations dropped by the send rate limit"})
		ConnectAttempts = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_connect_attempts_total", Help: "Number of IRC connection attempts"})
		TranslationDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "chat_translation_duration_seconds", Help: "Translation API call duration seconds", Buckets: prometheus.DefBuckets})
		ConnectedGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "chat_irc_connected", Help: "IRC connection up=1 down=0"})
	})
}

// CountSkip increments the skip counter for a reason.
func CountSkip(reason string) {
	if MessagesSkipped != nil {
		MessagesSkipped.WithLabelValues(reason).Inc()
	}
}

var connected atomic.Bool

// UpdateConnectedGauge sets gauge to 1 if connected else 0.
func UpdateConnectedGauge(up bool) {
	connected.Store(up)
	if ConnectedGauge != nil {
		if up {
			ConnectedGauge.Set(1)
		} else {
			ConnectedGauge.Set(0)
		}
	}
}

// IsConnected reports the last state passed to UpdateConnectedGauge.
func IsConnected() bool { return connected.Load() }

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
