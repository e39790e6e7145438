package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/models"
)

// BalanceResult is the normalized outcome of a balance query.
type BalanceResult struct {
	Success  bool   `json:"success"`
	Balance  string `json:"balance,omitempty"`
	Currency string `json:"currency,omitempty"`
	Message  string `json:"message,omitempty"`
	Raw      any    `json:"raw,omitempty"`
}

// BalanceService answers balance queries on behalf of registered providers.
type BalanceService struct {
	source ProviderSource
	pool   *AdapterPool
}

// NewBalanceService wires the service over a provider source and pool.
func NewBalanceService(source ProviderSource, pool *AdapterPool) *BalanceService {
	return &BalanceService{source: source, pool: pool}
}

// GetBalance fetches and normalizes the reseller balance for one provider.
func (s *BalanceService) GetBalance(ctx context.Context, providerID string) (BalanceResult, error) {
	prov, ok := s.source.GetProvider(providerID)
	if !ok {
		return BalanceResult{}, fmt.Errorf("%w: %s", config.ErrProviderNotFound, providerID)
	}
	if prov.Status != models.ProviderActive {
		return BalanceResult{}, fmt.Errorf("%w: %s", config.ErrProviderInactive, prov.Name)
	}

	raw, err := s.pool.Get(prov).GetBalance(ctx)
	if err != nil {
		return BalanceResult{Success: false, Message: err.Error()}, nil
	}
	return interpretBalance(raw), nil
}

// interpretBalance classifies a decoded balance payload. The dialect has
// no canonical shape, so recognition goes from the most common encodings
// to the least before giving up.
func interpretBalance(raw any) BalanceResult {
	c := classifyBalance(raw)
	switch c.Kind {
	case KindOk:
		payload, _ := c.Payload.(map[string]any)
		balance, currency := balanceFields(payload)
		return BalanceResult{Success: true, Balance: balance, Currency: currency, Raw: raw}
	case KindProviderError:
		return BalanceResult{Success: false, Message: c.Message, Raw: raw}
	default:
		return BalanceResult{
			Success: false,
			Message: "Provider returned the balance in an unexpected format",
			Raw:     raw,
		}
	}
}

func classifyBalance(raw any) Canonical {
	switch v := raw.(type) {
	case float64:
		// Bare number body; these panels never state a currency.
		return Ok(map[string]any{"balance": formatAmount(v), "currency": defaultCurrency})
	case map[string]any:
		if msg, hasErr := providerErrorOf(v); hasErr {
			return ProviderError(msg)
		}
		if _, ok := v["balance"]; ok {
			return Ok(v)
		}
		if funds, ok := v["funds"]; ok {
			out := cloneMap(v)
			out["balance"] = stringifyAmount(funds)
			return Ok(out)
		}
		// Text responses arrive wrapped in a data envelope.
		if data, ok := v["data"].(string); ok {
			if parsed, found := parseBalanceText(data); found {
				return Ok(map[string]any{"balance": parsed})
			}
		}
		if parsed, found := searchBalanceKey(v); found {
			out := cloneMap(v)
			out["balance"] = parsed
			return Ok(out)
		}
		return Unrecognized(v)
	default:
		return Unrecognized(raw)
	}
}

// defaultCurrency is assumed when a panel reports an amount without one.
const defaultCurrency = "USD"

// balanceKeys are the field names panels use for the account balance,
// tried in this order.
var balanceKeys = []string{"balance", "funds", "amount", "credit", "wallet"}

func searchBalanceKey(m map[string]any) (string, bool) {
	for _, key := range balanceKeys {
		if v, ok := m[key]; ok {
			return stringifyAmount(v), true
		}
	}
	// Case differences are common enough to warrant a second pass.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lk := strings.ToLower(k)
		for _, key := range balanceKeys {
			if lk == key {
				return stringifyAmount(m[k]), true
			}
		}
	}
	return "", false
}

// parseBalanceText recognizes plain-text bodies like "Balance: 42.50 USD"
// and "Balance: {...}" envelopes carrying a JSON document.
func parseBalanceText(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	for _, prefix := range []string{"Balance:", "balance:"} {
		rest, ok := strings.CutPrefix(trimmed, prefix)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)

		var obj map[string]any
		if err := json.Unmarshal([]byte(rest), &obj); err == nil {
			return searchBalanceKey(obj)
		}

		fields := strings.Fields(rest)
		if len(fields) > 0 {
			if _, err := strconv.ParseFloat(fields[0], 64); err == nil {
				return fields[0], true
			}
		}
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return trimmed, true
	}
	return "", false
}

func balanceFields(payload map[string]any) (balance, currency string) {
	balance = stringifyAmount(payload["balance"])
	if c, ok := payload["currency"].(string); ok {
		currency = c
	}
	return balance, currency
}

func stringifyAmount(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case float64:
		return formatAmount(a)
	default:
		return fmt.Sprintf("%v", a)
	}
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
