package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/smmops/panel/internal/config"
)

// AltResult reports which alternative transport succeeded, if any. The
// method name lets the caller tell the operator which integration pattern
// to adopt permanently.
type AltResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response string `json:"response,omitempty"`
	Method   string `json:"method,omitempty"`
}

// Strategy is one alternative delivery channel. All strategies share this
// signature so the connector can iterate them with a single combinator.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, rawURL, apiKey string) (string, error)
}

// AltConnector retries a failed direct transport through a prioritized
// sequence of fallback channels, stopping at the first success.
//
// The JSONP channel of browser deployments is deliberately absent: it
// requires a DOM, so server-side the chain ends at the text relay.
type AltConnector struct {
	strategies []Strategy
}

// NewAltConnector builds the default fallback chain on the given client.
func NewAltConnector(client *http.Client) *AltConnector {
	return &AltConnector{
		strategies: []Strategy{
			browserHeadersStrategy(client),
			relayStrategy(client, "cors-relay", config.CORSRelayURL, nil),
			relayStrategy(client, "json-relay", config.JSONRelayURL, unwrapContents),
			relayStrategy(client, "text-relay", config.TextRelayURL, nil),
		},
	}
}

// NewAltConnectorWithStrategies builds a connector over an explicit chain.
func NewAltConnectorWithStrategies(strategies ...Strategy) *AltConnector {
	return &AltConnector{strategies: strategies}
}

// Connect tries each strategy in priority order. A failure in one strategy
// never prevents the next from being attempted; the result is failure only
// when the chain is exhausted, and the message reports the last error seen.
func (c *AltConnector) Connect(ctx context.Context, rawURL, apiKey string) AltResult {
	var lastErr error

	for _, s := range c.strategies {
		body, err := runIsolated(ctx, s, rawURL, apiKey)
		if err != nil {
			slog.Debug("alternative transport failed",
				"method", s.Name,
				"url", rawURL,
				"error", err,
			)
			lastErr = err
			continue
		}

		slog.Info("alternative transport succeeded",
			"method", s.Name,
			"url", rawURL,
		)
		return AltResult{
			Success:  true,
			Message:  fmt.Sprintf("Connected via %s", s.Name),
			Response: body,
			Method:   s.Name,
		}
	}

	return AltResult{
		Success: false,
		Message: fmt.Sprintf("%v; last error: %v", config.ErrAllTransportsFailed, lastErr),
	}
}

// runIsolated executes one strategy, converting a panic into an error so a
// misbehaving channel cannot take the rest of the chain down with it.
func runIsolated(ctx context.Context, s Strategy, rawURL, apiKey string) (body string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport %s panicked: %v", s.Name, r)
		}
	}()
	return s.Run(ctx, rawURL, apiKey)
}

// browserHeadersStrategy issues a direct GET with a browser-like user agent
// and permissive headers; some providers gate on these.
func browserHeadersStrategy(client *http.Client) Strategy {
	return Strategy{
		Name: "browser-headers",
		Run: func(ctx context.Context, rawURL, apiKey string) (string, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, withServiceParams(rawURL, apiKey), nil)
			if err != nil {
				return "", err
			}
			req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
			req.Header.Set("Accept", "*/*")
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")

			return readStrategyResponse(client, req)
		},
	}
}

// relayStrategy routes the request through a public relay. The optional
// unwrap hook extracts the original body from relay-specific envelopes.
func relayStrategy(client *http.Client, name, relayBase string, unwrap func(string) (string, error)) Strategy {
	return Strategy{
		Name: name,
		Run: func(ctx context.Context, rawURL, apiKey string) (string, error) {
			target := relayBase + url.QueryEscape(withServiceParams(rawURL, apiKey))
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return "", err
			}

			body, err := readStrategyResponse(client, req)
			if err != nil {
				return "", err
			}
			if unwrap != nil {
				return unwrap(body)
			}
			return body, nil
		},
	}
}

func readStrategyResponse(client *http.Client, req *http.Request) (string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("relay returned HTTP %d", resp.StatusCode)
	}
	return string(body), nil
}

// unwrapContents extracts the {"contents": "..."} envelope of JSON relays.
func unwrapContents(body string) (string, error) {
	var envelope struct {
		Contents string `json:"contents"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return "", fmt.Errorf("unexpected relay envelope: %w", err)
	}
	if envelope.Contents == "" {
		return "", fmt.Errorf("relay envelope had no contents")
	}
	return envelope.Contents, nil
}

// withServiceParams appends the canonical key/action query parameters.
func withServiceParams(rawURL, apiKey string) string {
	form := url.Values{
		"key":    {apiKey},
		"action": {config.ActionServices},
	}
	sep := "?"
	if u, err := url.Parse(rawURL); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return rawURL + sep + form.Encode()
}
