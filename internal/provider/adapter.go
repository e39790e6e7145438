package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/models"
)

// ProviderSource resolves a provider ID to its current configuration.
// The registry implements this; the adapter pool depends only on the
// interface so the two packages stay decoupled.
type ProviderSource interface {
	GetProvider(id string) (models.Provider, bool)
}

// Connector is the semantic surface a provider adapter exposes. Responses
// are decoded provider payloads, already unwrapped from transport quirks.
type Connector interface {
	GetServices(ctx context.Context) (any, error)
	GetBalance(ctx context.Context) (any, error)
	AddOrder(ctx context.Context, req models.OrderRequest) (any, error)
	GetOrderStatus(ctx context.Context, orderID string) (any, error)
}

// ConnectorFactory builds a Connector for one provider configuration.
type ConnectorFactory func(p models.Provider) Connector

// Adapter speaks the de-facto panel API dialect: form-encoded POST with a
// key and action parameter, with per-panel deviations taken from profiles.
// Each adapter carries its own limiter and breaker so a flapping provider
// cannot starve its peers.
type Adapter struct {
	provider models.Provider
	client   *http.Client
	limiter  *RateLimiter
	breaker  *CircuitBreaker
	profiles *ProfileRegistry
}

// NewAdapter builds an adapter for one provider.
func NewAdapter(p models.Provider, profiles *ProfileRegistry) *Adapter {
	return &Adapter{
		provider: p,
		client:   NewHTTPClient(config.AdapterTimeout),
		limiter:  NewRateLimiter(p.Name, config.ProviderRequestsPerSecond),
		breaker:  NewCircuitBreaker(p.Name, config.CircuitBreakerThreshold, config.CircuitBreakerCooldown),
		profiles: profiles,
	}
}

// Connect performs one raw API exchange for the given action. It injects
// the API key, applies the provider's transport profile, and returns the
// raw response body on any completed HTTP exchange regardless of status
// class below 400.
func (a *Adapter) Connect(ctx context.Context, action string, params url.Values) (string, error) {
	if !a.breaker.Allow() {
		return "", fmt.Errorf("%w: provider %s", config.ErrCircuitOpen, a.provider.Name)
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			form.Add(k, v)
		}
	}
	form.Set("key", a.provider.APIKey)
	form.Set("action", action)

	started := time.Now()
	body, err := a.exchange(ctx, a.profiles.Resolve(a.provider.URL), form)
	observeRequest(a.provider.Name, action, time.Since(started), err)

	if err != nil {
		a.breaker.RecordFailure()
		return "", err
	}
	a.breaker.RecordSuccess()
	return body, nil
}

func (a *Adapter) exchange(ctx context.Context, profile Profile, form url.Values) (string, error) {
	if profile.Method == http.MethodGet {
		return a.exchangeGET(ctx, profile, form)
	}

	var lastErr error
	for _, target := range a.postTargets(profile) {
		body, err := a.exchangePOST(ctx, target, form)
		if err == nil {
			return body, nil
		}
		lastErr = err

		// Some panels reject POST at the transport level but accept the
		// same parameters over GET. One retry, only for transport failures.
		if isTransportError(err) {
			if body, getErr := a.getOnce(ctx, target, form); getErr == nil {
				slog.Debug("provider accepted GET after POST transport failure",
					"provider", a.provider.Name,
					"url", target,
				)
				return body, nil
			}
		}
	}
	return "", lastErr
}

// postTargets expands the profile's path variants for POST panels. A URL
// already carrying one of the variants is used as configured.
func (a *Adapter) postTargets(profile Profile) []string {
	if len(profile.PathVariants) == 0 {
		return []string{a.provider.URL}
	}

	base := strings.TrimRight(a.provider.URL, "/")
	for _, suffix := range profile.PathVariants {
		if strings.HasSuffix(base, suffix) {
			return []string{a.provider.URL}
		}
	}

	targets := make([]string, 0, len(profile.PathVariants))
	for _, suffix := range profile.PathVariants {
		targets = append(targets, base+suffix)
	}
	return targets
}

// exchangeGET probes the profile's path variants in order and returns the
// first completed exchange with a sub-400 status. Transport failures and
// error statuses both advance to the next variant.
func (a *Adapter) exchangeGET(ctx context.Context, profile Profile, form url.Values) (string, error) {
	variants := profile.PathVariants
	if len(variants) == 0 {
		variants = []string{""}
	}

	var lastErr error
	for _, suffix := range variants {
		target := strings.TrimRight(a.provider.URL, "/") + suffix
		body, err := a.getOnce(ctx, target, form)
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}
	return "", lastErr
}

func (a *Adapter) getOnce(ctx context.Context, target string, form url.Values) (string, error) {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target+sep+form.Encode(), nil)
	if err != nil {
		return "", err
	}
	return a.do(req)
}

func (a *Adapter) exchangePOST(ctx context.Context, target string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *Adapter) do(req *http.Request) (string, error) {
	resp, err := a.client.Do(req)
	if err != nil {
		return "", mapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBody))
	if err != nil {
		return "", fmt.Errorf("No response received: %v", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("Request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

// mapTransportError converts client errors into the operator-facing
// vocabulary the troubleshooter keys on.
func mapTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("Request timeout: %v", err)
	case strings.Contains(err.Error(), "connection refused"):
		return fmt.Errorf("Connection refused: %v", err)
	default:
		return fmt.Errorf("No response received: %v", err)
	}
}

func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.HasPrefix(msg, "Request timeout:") ||
		strings.HasPrefix(msg, "Connection refused:") ||
		strings.HasPrefix(msg, "No response received:")
}

// normalizeBody decodes a raw provider response into a value the domain
// interpreters can work with. Bodies that are not JSON, or that decode to
// a bare string, are wrapped so callers always receive structured data.
func normalizeBody(body string) any {
	trimmed := strings.TrimSpace(body)

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return map[string]any{"data": trimmed, "success": true}
	}

	// A JSON string sometimes carries a second JSON document inside.
	if s, ok := decoded.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			return inner
		}
		return map[string]any{"data": s, "success": true}
	}
	return decoded
}

// normalize applies normalizeBody plus the profile's envelope handling.
// Text payloads stay wrapped; the domain interpreters parse those themselves.
func (a *Adapter) normalize(body string) any {
	decoded := normalizeBody(body)
	if !a.profiles.Resolve(a.provider.URL).Unwrap {
		return decoded
	}
	if m, ok := decoded.(map[string]any); ok {
		switch inner := m["data"].(type) {
		case []any, map[string]any:
			return inner
		}
	}
	return decoded
}

// GetServices fetches the provider's service catalog.
func (a *Adapter) GetServices(ctx context.Context) (any, error) {
	body, err := a.Connect(ctx, config.ActionServices, nil)
	if err != nil {
		return nil, err
	}
	return a.normalize(body), nil
}

// GetBalance fetches the reseller account balance.
func (a *Adapter) GetBalance(ctx context.Context) (any, error) {
	body, err := a.Connect(ctx, config.ActionBalance, nil)
	if err != nil {
		return nil, err
	}
	return a.normalize(body), nil
}

// AddOrder submits a new order. Optional drip-feed fields are forwarded
// only when set so strict panels do not reject the request.
func (a *Adapter) AddOrder(ctx context.Context, req models.OrderRequest) (any, error) {
	params := url.Values{
		"service":  {req.Service},
		"link":     {req.Link},
		"quantity": {fmt.Sprintf("%d", req.Quantity)},
	}
	if req.Comments != "" {
		params.Set("comments", req.Comments)
	}
	if req.Runs > 0 {
		params.Set("runs", fmt.Sprintf("%d", req.Runs))
	}
	if req.Interval > 0 {
		params.Set("interval", fmt.Sprintf("%d", req.Interval))
	}

	body, err := a.Connect(ctx, config.ActionAdd, params)
	if err != nil {
		return nil, err
	}
	return a.normalize(body), nil
}

// GetOrderStatus fetches the provider-side status of one order.
func (a *Adapter) GetOrderStatus(ctx context.Context, orderID string) (any, error) {
	body, err := a.Connect(ctx, config.ActionStatus, url.Values{"order": {orderID}})
	if err != nil {
		return nil, err
	}
	return a.normalize(body), nil
}
