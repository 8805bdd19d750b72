package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/onnwee/chat-translator/db"
	"github.com/onnwee/chat-translator/telemetry"
)

// Handlers holds dependencies for HTTP handlers. The database is optional;
// history endpoints degrade gracefully without it.
type Handlers struct {
	db        *sql.DB
	channel   string
	startedAt time.Time
}

func NewHandlers(database *sql.DB, channel string) *Handlers {
	return &Handlers{db: database, channel: channel, startedAt: time.Now().UTC()}
}

// HandleHealthz responds to liveness probes. With a database configured it
// also checks connectivity.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz reports readiness: the relay must be connected to chat.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !telemetry.IsConnected() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "not_ready",
			"reason": "chat not connected",
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// HandleStatus returns a small operational summary.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	out := map[string]interface{}{
		"channel":        h.channel,
		"connected":      telemetry.IsConnected(),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"db_configured":  h.db != nil,
	}
	if h.db != nil {
		if n, err := db.CountTranslations(r.Context(), h.db, h.channel); err == nil {
			out["translations_total"] = n
		} else {
			slog.Warn("status count query failed", slog.Any("err", err))
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// HandleTranslations returns recent relayed translations, newest first.
// Supports ?limit=N (default 50, capped at 500).
func (h *Handlers) HandleTranslations(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		http.Error(w, "history not configured", http.StatusNotFound)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	recs, err := db.RecentTranslations(r.Context(), h.db, h.channel, limit)
	if err != nil {
		slog.Error("translations query failed", slog.Any("err", err))
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []db.TranslationRecord{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(recs)
}
