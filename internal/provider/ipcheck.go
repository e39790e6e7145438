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

// Allow-list rejection keywords observed across SMM providers. These are
// provider-observed heuristics, not a protocol guarantee.
var allowlistKeywords = []string{"whitelist", "blocked", "not allowed", "ip"}

// IPCheckResult is the outcome of the IP allow-list diagnostic.
type IPCheckResult struct {
	Success      bool     `json:"success"`
	ServerIP     string   `json:"serverIp,omitempty"`
	Allowlisted  bool     `json:"isWhitelisted"`
	HTTPEnabled  bool     `json:"curlEnabled"`
	HTTPSEnabled bool     `json:"httpsEnabled"`
	Details      string   `json:"details,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// IPDiagnostic infers whether a provider is rejecting requests because of the
// caller's egress IP, as opposed to rejecting the credential itself.
type IPDiagnostic struct {
	client        *http.Client
	echoURL       string
	httpProbeURL  string
	httpsProbeURL string
}

// NewIPDiagnostic creates the diagnostic. Probe endpoints are injectable so
// deployments behind strict egress policies (and tests) can redirect them.
func NewIPDiagnostic(client *http.Client, echoURL, httpProbeURL, httpsProbeURL string) *IPDiagnostic {
	return &IPDiagnostic{
		client:        client,
		echoURL:       echoURL,
		httpProbeURL:  httpProbeURL,
		httpsProbeURL: httpsProbeURL,
	}
}

// CheckIPAllowlist resolves the caller's public IP, probes the provider with
// an authenticated balance request, and independently verifies generic HTTP
// and HTTPS capability. Overall success requires all three checks to pass.
func (d *IPDiagnostic) CheckIPAllowlist(ctx context.Context, rawURL, apiKey string) IPCheckResult {
	result := IPCheckResult{}

	ip, err := d.fetchEgressIP(ctx)
	if err != nil {
		slog.Warn("egress IP resolution failed", "error", err)
		result.Details = fmt.Sprintf("could not determine egress IP: %v", err)
	} else {
		result.ServerIP = ip
	}

	result.Allowlisted, result.Details = d.probeAllowlist(ctx, rawURL, apiKey, result.Details)

	result.HTTPEnabled = d.probeCapability(ctx, d.httpProbeURL)
	result.HTTPSEnabled = d.probeCapability(ctx, d.httpsProbeURL)

	result.Success = result.Allowlisted && result.HTTPEnabled && result.HTTPSEnabled

	if !result.Allowlisted {
		ipLabel := result.ServerIP
		if ipLabel == "" {
			ipLabel = "<your server IP>"
		}
		result.Suggestions = []string{
			fmt.Sprintf("Log into the provider panel and add %s to the API IP allow-list", ipLabel),
			"Allow-list changes can take a few minutes to propagate; retry afterwards",
			"If the provider has no allow-list setting, contact their support with your IP",
		}
	}

	slog.Debug("IP allow-list diagnostic complete",
		"url", rawURL,
		"serverIp", result.ServerIP,
		"allowlisted", result.Allowlisted,
		"httpEnabled", result.HTTPEnabled,
		"httpsEnabled", result.HTTPSEnabled,
	)

	return result
}

// fetchEgressIP resolves the caller's public IP via the configured echo service.
func (d *IPDiagnostic) fetchEgressIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.echoURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}

	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return "", fmt.Errorf("empty response from IP echo service %s", d.echoURL)
	}
	return ip, nil
}

// probeAllowlist sends an authenticated balance request and classifies a
// 401/403 status or an allow-list keyword in the body as an IP restriction.
func (d *IPDiagnostic) probeAllowlist(ctx context.Context, rawURL, apiKey, details string) (bool, string) {
	form := url.Values{
		"key":    {apiKey},
		"action": {config.ActionBalance},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, appendDetail(details, fmt.Sprintf("allow-list probe request invalid: %v", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return false, appendDetail(details, fmt.Sprintf("provider unreachable during IP check: %v", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return false, appendDetail(details, fmt.Sprintf("provider rejected request with HTTP %d", resp.StatusCode))
	}

	lower := strings.ToLower(string(body))
	for _, kw := range allowlistKeywords {
		if strings.Contains(lower, kw) {
			return false, appendDetail(details, fmt.Sprintf("provider response mentions %q", kw))
		}
	}

	return true, details
}

// probeCapability checks that the runtime itself can reach a known-good endpoint.
func (d *IPDiagnostic) probeCapability(ctx context.Context, probeURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := d.client.Do(req)
	if err != nil {
		slog.Debug("capability probe failed", "url", probeURL, "error", err)
		return false
	}
	resp.Body.Close()
	return true
}

func appendDetail(details, extra string) string {
	if details == "" {
		return extra
	}
	return details + "; " + extra
}
