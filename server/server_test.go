package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onnwee/chat-translator/telemetry"
)

func TestHealthzWithoutDB(t *testing.T) {
	mux := NewMux(nil, "testchannel")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Errorf("missing correlation id header")
	}
}

func TestReadyzReflectsConnection(t *testing.T) {
	telemetry.Init()
	mux := NewMux(nil, "testchannel")

	telemetry.UpdateConnectedGauge(false)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503 while disconnected", rec.Code)
	}

	telemetry.UpdateConnectedGauge(true)
	defer telemetry.UpdateConnectedGauge(false)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d, want 200 while connected", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	telemetry.Init()
	mux := NewMux(nil, "testchannel")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode status body: %v", err)
	}
	if body["channel"] != "testchannel" {
		t.Errorf("channel = %v, want testchannel", body["channel"])
	}
	if body["db_configured"] != false {
		t.Errorf("db_configured = %v, want false", body["db_configured"])
	}
}

func TestTranslationsWithoutDB(t *testing.T) {
	mux := NewMux(nil, "testchannel")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/translations", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("translations status = %d, want 404 without db", rec.Code)
	}
}

func TestTranslationsLimitIgnoredWithoutDB(t *testing.T) {
	// The db check runs before limit parsing, so without a db this is a 404.
	mux := NewMux(nil, "testchannel")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/translations?limit=abc", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (db check precedes limit parse)", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	telemetry.Init()
	mux := NewMux(nil, "testchannel")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	mux := NewMux(nil, "testchannel")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/status", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}
