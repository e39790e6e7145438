package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/smmops/panel/internal/config"
)

// KeyCheckResult reports whether a (url, apiKey) pair completed an HTTP
// exchange. Success is transport-level: even a provider error body counts,
// because the caller interprets provider-specific error content itself.
type KeyCheckResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response string `json:"response,omitempty"`
}

// Verifier confirms that a given API key is accepted by a provider endpoint,
// independent of generic reachability.
type Verifier struct {
	client *http.Client
}

// NewVerifier creates a Verifier using the given client.
func NewVerifier(client *http.Client) *Verifier {
	return &Verifier{client: client}
}

// VerifyAPIKey sends the canonical services request with the key, POST first,
// then GET with the same parameters in the query string (some providers only
// accept GET). Only transport failures produce Success=false.
func (v *Verifier) VerifyAPIKey(ctx context.Context, rawURL, apiKey string) KeyCheckResult {
	form := url.Values{
		"key":    {apiKey},
		"action": {config.ActionServices},
	}

	body, status, err := v.post(ctx, rawURL, form)
	if err == nil {
		return KeyCheckResult{
			Success:  true,
			Message:  fmt.Sprintf("API key check completed (HTTP %d via POST)", status),
			Response: body,
		}
	}

	slog.Debug("key verification POST failed, retrying as GET",
		"url", rawURL,
		"error", err,
	)

	body, status, getErr := v.get(ctx, rawURL, form)
	if getErr == nil {
		return KeyCheckResult{
			Success:  true,
			Message:  fmt.Sprintf("API key check completed (HTTP %d via GET)", status),
			Response: body,
		}
	}

	return KeyCheckResult{
		Success: false,
		Message: classifyTransportError(getErr),
	}
}

func (v *Verifier) post(ctx context.Context, rawURL string, form url.Values) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return v.do(req)
}

func (v *Verifier) get(ctx context.Context, rawURL string, form url.Values) (string, int, error) {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+sep+form.Encode(), nil)
	if err != nil {
		return "", 0, err
	}

	return v.do(req)
}

func (v *Verifier) do(req *http.Request) (string, int, error) {
	resp, err := v.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))
	if err != nil {
		return "", 0, err
	}

	return string(body), resp.StatusCode, nil
}
