package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAzureClientTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("path = %q, want /translate", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api-version") != "3.0" {
			t.Errorf("api-version = %q, want 3.0", q.Get("api-version"))
		}
		if q.Get("from") != "tr" || q.Get("to") != "en" {
			t.Errorf("from/to = %q/%q, want tr/en", q.Get("from"), q.Get("to"))
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "test-key" {
			t.Errorf("missing subscription key header")
		}
		if r.Header.Get("Ocp-Apim-Subscription-Region") != "eastus" {
			t.Errorf("missing subscription region header")
		}
		if r.Header.Get("X-ClientTraceId") == "" {
			t.Errorf("missing X-ClientTraceId header")
		}
		var body []map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if len(body) != 1 || body[0]["text"] != "merhaba dünya" {
			t.Errorf("unexpected request body: %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{{
			"translations": []map[string]string{{"text": "hello world", "to": "en"}},
		}})
	}))
	defer server.Close()

	c := &AzureClient{Key: "test-key", Endpoint: server.URL, Region: "eastus", TargetLanguage: "en"}
	res, err := c.Translate(context.Background(), "merhaba dünya", "tr")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if res.TranslatedText != "hello world" {
		t.Errorf("TranslatedText = %q, want %q", res.TranslatedText, "hello world")
	}
	if res.SourceLanguage != "tr" || res.TargetLanguage != "en" {
		t.Errorf("languages = %q>%q, want tr>en", res.SourceLanguage, res.TargetLanguage)
	}
}

func TestAzureClientUnescapesEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{{
			"translations": []map[string]string{{"text": "cats &amp; dogs", "to": "en"}},
		}})
	}))
	defer server.Close()

	c := &AzureClient{Key: "k", Endpoint: server.URL}
	res, err := c.Translate(context.Background(), "kediler ve köpekler", "tr")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if res.TranslatedText != "cats & dogs" {
		t.Errorf("TranslatedText = %q, want unescaped ampersand", res.TranslatedText)
	}
}

func TestAzureClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401000,"message":"invalid key"}}`))
	}))
	defer server.Close()

	c := &AzureClient{Key: "bad", Endpoint: server.URL}
	if _, err := c.Translate(context.Background(), "test metni", "tr"); err == nil {
		t.Fatalf("expected error on 401 response")
	}
}

func TestAzureClientMissingKey(t *testing.T) {
	c := &AzureClient{Endpoint: "http://unused"}
	if _, err := c.Translate(context.Background(), "metin", "tr"); err == nil {
		t.Fatalf("expected error without key")
	}
}

func TestAzureClientEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{})
	}))
	defer server.Close()

	c := &AzureClient{Key: "k", Endpoint: server.URL}
	if _, err := c.Translate(context.Background(), "metin", "tr"); err == nil {
		t.Fatalf("expected error on empty translation array")
	}
}

func TestIsRedundant(t *testing.T) {
	cases := []struct {
		original, translated string
		want                 bool
	}{
		{"Hello", "hello", true},
		{"café", "cafe", true},
		{"  spaced  ", "spaced", true},
		{"merhaba", "hello", false},
		{"Привет", "Hi", false},
	}
	for _, c := range cases {
		if got := IsRedundant(c.original, c.translated); got != c.want {
			t.Errorf("IsRedundant(%q, %q) = %v, want %v", c.original, c.translated, got, c.want)
		}
	}
}
