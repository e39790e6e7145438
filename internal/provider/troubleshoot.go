package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Interfaces over the individual diagnostics so the orchestrator can be
// exercised with fakes.
type directProber interface {
	TestDirectConnection(ctx context.Context, rawURL string) ProbeResult
}

type keyVerifier interface {
	VerifyAPIKey(ctx context.Context, rawURL, apiKey string) KeyCheckResult
}

type ipChecker interface {
	CheckIPAllowlist(ctx context.Context, rawURL, apiKey string) IPCheckResult
}

type altTransport interface {
	Connect(ctx context.Context, rawURL, apiKey string) AltResult
}

// Details is the per-layer evidence collected during a troubleshooting run.
type Details struct {
	NetworkConnectivity bool   `json:"networkConnectivity"`
	APIKeyValid         bool   `json:"apiKeyValid"`
	IPAllowlisted       bool   `json:"ipAllowlisted"`
	ServerIP            string `json:"serverIp,omitempty"`
	HTTPEnabled         bool   `json:"httpEnabled"`
	HTTPSEnabled        bool   `json:"httpsEnabled"`
	FixApplied          bool   `json:"fixApplied"`
	FixDetails          string `json:"fixDetails,omitempty"`
	WorkingURL          string `json:"workingUrl,omitempty"`
}

// Report is the outcome of a full troubleshooting pass.
type Report struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Details     Details  `json:"details"`
	Suggestions []string `json:"suggestions,omitempty"`
	RawResponse string   `json:"rawResponse,omitempty"`
}

// Troubleshooter runs the diagnostic ladder against a provider endpoint:
// transport reachability, URL variants, alternative transports, API key
// validity, then IP restrictions. Each rung either repairs the connection
// or narrows down the failure for the operator.
type Troubleshooter struct {
	prober   directProber
	verifier keyVerifier
	ipCheck  ipChecker
	alt      altTransport
	profiles *ProfileRegistry
}

// NewTroubleshooter wires the orchestrator over concrete diagnostics.
func NewTroubleshooter(prober directProber, verifier keyVerifier, ipCheck ipChecker, alt altTransport) *Troubleshooter {
	return &Troubleshooter{
		prober:   prober,
		verifier: verifier,
		ipCheck:  ipCheck,
		alt:      alt,
		profiles: NewProfileRegistry(),
	}
}

// Run executes the full ladder. It never panics outward; an unexpected
// failure in any diagnostic degrades to a failed report.
func (t *Troubleshooter) Run(ctx context.Context, rawURL, apiKey string) (report Report) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("troubleshooter panicked", "url", rawURL, "panic", r)
			report = Report{
				Success: false,
				Message: fmt.Sprintf("Troubleshooting failed unexpectedly: %v", r),
			}
		}
	}()

	slog.Info("troubleshooting started", "url", rawURL)

	// Rung 1: direct transport.
	probe := t.prober.TestDirectConnection(ctx, rawURL)
	report.Details.NetworkConnectivity = probe.Success

	if !probe.Success {
		// Rung 2: common URL shape mistakes.
		for _, variant := range urlVariants(rawURL) {
			vp := t.prober.TestDirectConnection(ctx, variant)
			if vp.Success {
				report.Details.NetworkConnectivity = true
				report.Details.FixApplied = true
				report.Details.FixDetails = fmt.Sprintf("Corrected API URL to %s", variant)
				report.Details.WorkingURL = variant
				rawURL = variant
				break
			}
		}
	}

	if !report.Details.NetworkConnectivity {
		// Rung 3: alternative transports.
		alt := t.alt.Connect(ctx, rawURL, apiKey)
		if alt.Success {
			report.Details.NetworkConnectivity = true
			report.Details.FixApplied = true
			report.Details.FixDetails = fmt.Sprintf("Connected using alternative transport: %s", alt.Method)
			report.RawResponse = alt.Response
		} else {
			report.Success = false
			report.Message = fmt.Sprintf("Cannot reach the provider: %s", probe.Message)
			report.Suggestions = FixPlan(report.Details)
			return report
		}
	}

	// Rung 4: credentials.
	keyCheck := t.verifier.VerifyAPIKey(ctx, rawURL, apiKey)
	report.Details.APIKeyValid = keyCheck.Success
	if keyCheck.Response != "" && report.RawResponse == "" {
		report.RawResponse = keyCheck.Response
	}

	// Rung 5: version-path mistakes. Panels known to ship both API versions
	// get a re-verify against the swapped path before the key is blamed.
	if !keyCheck.Success {
		if p := t.profiles.Resolve(rawURL); p.Method == http.MethodPost && len(p.PathVariants) > 0 {
			for _, variant := range urlVariants(rawURL) {
				recheck := t.verifier.VerifyAPIKey(ctx, variant, apiKey)
				if !recheck.Success {
					continue
				}
				report.Details.APIKeyValid = true
				report.Details.FixApplied = true
				report.Details.FixDetails = fmt.Sprintf("Corrected API URL to %s", variant)
				report.Details.WorkingURL = variant
				if recheck.Response != "" {
					report.RawResponse = recheck.Response
				}
				rawURL = variant
				break
			}
		}
	}

	// Rung 6: IP restrictions.
	ipResult := t.ipCheck.CheckIPAllowlist(ctx, rawURL, apiKey)
	report.Details.IPAllowlisted = ipResult.Allowlisted
	report.Details.ServerIP = ipResult.ServerIP
	report.Details.HTTPEnabled = ipResult.HTTPEnabled
	report.Details.HTTPSEnabled = ipResult.HTTPSEnabled

	report.Success = report.Details.NetworkConnectivity &&
		report.Details.APIKeyValid &&
		report.Details.IPAllowlisted &&
		report.Details.HTTPEnabled &&
		report.Details.HTTPSEnabled

	report.Message = summarize(report.Details)
	report.Suggestions = FixPlan(report.Details)

	slog.Info("troubleshooting finished",
		"url", rawURL,
		"success", report.Success,
		"fixApplied", report.Details.FixApplied,
	)
	return report
}

// summarize picks the single most actionable message. IP restrictions win
// over key problems because an allowlist failure also makes a valid key
// look invalid.
func summarize(d Details) string {
	switch {
	case d.NetworkConnectivity && d.APIKeyValid && d.IPAllowlisted && d.HTTPEnabled && d.HTTPSEnabled:
		if d.FixApplied {
			return fmt.Sprintf("Connection repaired. %s", d.FixDetails)
		}
		return "Provider connection is healthy."
	case !d.IPAllowlisted && d.ServerIP != "":
		return fmt.Sprintf("The provider appears to block this server's IP (%s). Add it to the provider's allowlist.", d.ServerIP)
	case !d.IPAllowlisted:
		return "The provider appears to block this server's IP. Add it to the provider's allowlist."
	case !d.APIKeyValid:
		return "The provider is reachable but rejected the API key. Verify the key in the provider panel."
	case !d.HTTPEnabled && !d.HTTPSEnabled:
		return "Server configuration issue: outbound HTTP and HTTPS probes both failed. Check this server's egress connectivity."
	case !d.HTTPSEnabled:
		return "Server configuration issue: outbound HTTPS requests fail from this server. Check TLS egress and proxy settings."
	case !d.HTTPEnabled:
		return "Server configuration issue: outbound plain-HTTP requests fail from this server. Check egress firewall rules for port 80."
	default:
		return "Connection diagnostics were inconclusive. Review the details and suggestions."
	}
}

// FixPlan renders an ordered checklist from the evidence. Pure so it can
// be re-rendered client-side without re-running the diagnostics.
func FixPlan(d Details) []string {
	var steps []string
	add := func(format string, args ...any) {
		steps = append(steps, fmt.Sprintf("%d. %s", len(steps)+1, fmt.Sprintf(format, args...)))
	}

	if !d.NetworkConnectivity {
		add("Confirm the API URL is correct and the provider panel is online.")
		add("Check this server's DNS and outbound firewall rules.")
	}
	if !d.IPAllowlisted {
		if d.ServerIP != "" {
			add("Add %s to the API IP allowlist in the provider panel.", d.ServerIP)
		} else {
			add("Add this server's IP to the API IP allowlist in the provider panel.")
		}
		add("Wait a few minutes after saving; some panels cache allowlist changes.")
	}
	if !d.APIKeyValid {
		add("Regenerate the API key in the provider panel and update it here.")
		add("Make sure the key was copied without leading or trailing spaces.")
	}
	if d.NetworkConnectivity && !d.HTTPSEnabled {
		add("Outbound HTTPS requests fail from this server. Check TLS egress and proxy settings.")
	}
	if d.NetworkConnectivity && !d.HTTPEnabled {
		add("Outbound plain-HTTP requests fail from this server. Check egress firewall rules for port 80.")
	}
	if d.FixApplied && d.WorkingURL != "" {
		add("Update the stored API URL to %s so future calls skip the probe.", d.WorkingURL)
	}
	if len(steps) == 0 {
		add("No action needed. Re-run diagnostics if orders start failing.")
	}
	return steps
}

// urlVariants generates the URL shapes operators most often get wrong:
// missing or mismatched /api/v1 and /api/v2 path suffixes.
func urlVariants(rawURL string) []string {
	trimmed := strings.TrimRight(rawURL, "/")
	switch {
	case strings.HasSuffix(trimmed, "/api/v1"):
		return []string{strings.TrimSuffix(trimmed, "/api/v1") + "/api/v2"}
	case strings.HasSuffix(trimmed, "/api/v2"):
		return []string{strings.TrimSuffix(trimmed, "/api/v2") + "/api/v1"}
	default:
		return []string{trimmed + "/api/v2", trimmed + "/api/v1"}
	}
}
