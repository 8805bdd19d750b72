package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultRequestTimeout = 10 * time.Second

// AzureClient talks to the Azure Translator v3 /translate endpoint.
type AzureClient struct {
	Key      string
	Endpoint string
	Region   string
	// TargetLanguage is the output language for every translation.
	TargetLanguage string
	HTTPClient     *http.Client
}

func (c *AzureClient) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: defaultRequestTimeout}
}

// Translate converts text from sourceLang into the client's target language.
func (c *AzureClient) Translate(ctx context.Context, text, sourceLang string) (Result, error) {
	if c.Key == "" {
		return Result{}, errors.New("missing azure translator key")
	}
	if text == "" {
		return Result{}, errors.New("empty text")
	}
	target := c.TargetLanguage
	if target == "" {
		target = "en"
	}

	body, err := json.Marshal([]map[string]string{{"text": text}})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/translate", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	q := req.URL.Query()
	q.Set("api-version", "3.0")
	q.Set("from", sourceLang)
	q.Set("to", target)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Ocp-Apim-Subscription-Key", c.Key)
	if c.Region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", c.Region)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-ClientTraceId", uuid.NewString())

	resp, err := c.http().Do(req)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("azure translate failed: %s: %s", resp.Status, string(b))
	}

	var payload []struct {
		Translations []struct {
			Text string `json:"text"`
			To   string `json:"to"`
		} `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, err
	}
	if len(payload) == 0 || len(payload[0].Translations) == 0 {
		return Result{}, errors.New("empty translation response")
	}
	tr := payload[0].Translations[0]
	out := Result{
		SourceLanguage: sourceLang,
		TargetLanguage: target,
		TranslatedText: html.UnescapeString(tr.Text),
	}
	if tr.To != "" {
		out.TargetLanguage = tr.To
	}
	return out, nil
}
