package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// Cap on how much of a diagnostic response body is retained.
const maxDiagnosticBody = 64 << 10

// ProbeResult reports whether a URL is reachable at all.
// Success means a complete HTTP exchange happened, even with an error status;
// "reachable but erroring" and "unreachable" are different failure modes.
type ProbeResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response string `json:"response,omitempty"`
}

// Prober performs low-level reachability tests against provider endpoints,
// tolerating servers that reject some HTTP methods.
type Prober struct {
	client *http.Client
}

// NewProber creates a Prober using the given client. The client is expected
// to skip TLS verification (see NewHTTPClient).
func NewProber(client *http.Client) *Prober {
	return &Prober{client: client}
}

// TestDirectConnection tries GET, then HEAD, then OPTIONS, returning success
// on the first method that completes without a transport-level error.
func (p *Prober) TestDirectConnection(ctx context.Context, rawURL string) ProbeResult {
	methods := []string{http.MethodGet, http.MethodHead, http.MethodOptions}

	var lastErr error
	for _, method := range methods {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			lastErr = err
			continue
		}

		resp, err := p.client.Do(req)
		if err != nil {
			slog.Debug("probe attempt failed",
				"url", rawURL,
				"method", method,
				"error", err,
			)
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			return ProbeResult{
				Success:  true,
				Message:  fmt.Sprintf("Reachable, but server returned HTTP %d via %s", resp.StatusCode, method),
				Response: string(body),
			}
		}

		slog.Debug("probe succeeded", "url", rawURL, "method", method, "status", resp.StatusCode)
		return ProbeResult{
			Success:  true,
			Message:  fmt.Sprintf("Connection successful via %s", method),
			Response: string(body),
		}
	}

	return ProbeResult{
		Success: false,
		Message: classifyTransportError(lastErr),
	}
}

// classifyTransportError maps a transport failure to a descriptive string.
// Callers needing fine-grained causes match on message keywords.
func classifyTransportError(err error) string {
	if err == nil {
		return "Network error: no response received"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("DNS resolution failed: %v", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Request timeout: %v", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("Request timeout: %v", err)
	}

	if strings.Contains(err.Error(), "connection refused") {
		return fmt.Sprintf("Connection refused: %v", err)
	}

	return fmt.Sprintf("Network error: %v", err)
}
