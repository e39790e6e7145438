package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/models"
)

// ServicesResult is the normalized outcome of a catalog fetch.
type ServicesResult struct {
	Success  bool                   `json:"success"`
	Services []models.RemoteService `json:"services,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Raw      any                    `json:"raw,omitempty"`
}

// CatalogService fetches and normalizes provider service catalogs.
type CatalogService struct {
	source ProviderSource
	pool   *AdapterPool
}

// NewCatalogService wires the service over a provider source and pool.
func NewCatalogService(source ProviderSource, pool *AdapterPool) *CatalogService {
	return &CatalogService{source: source, pool: pool}
}

// FetchServices retrieves one provider's catalog and normalizes it into
// RemoteService rows.
func (s *CatalogService) FetchServices(ctx context.Context, providerID string) (ServicesResult, error) {
	prov, ok := s.source.GetProvider(providerID)
	if !ok {
		return ServicesResult{}, fmt.Errorf("%w: %s", config.ErrProviderNotFound, providerID)
	}
	if prov.Status != models.ProviderActive {
		return ServicesResult{}, fmt.Errorf("%w: %s", config.ErrProviderInactive, prov.Name)
	}

	raw, err := s.pool.Get(prov).GetServices(ctx)
	if err != nil {
		return ServicesResult{Success: false, Message: err.Error()}, nil
	}
	return interpretServices(raw), nil
}

func interpretServices(raw any) ServicesResult {
	c := classifyServices(raw)
	switch c.Kind {
	case KindOk:
		entries, _ := c.Payload.([]any)
		return ServicesResult{Success: true, Services: NormalizeServices(entries), Raw: raw}
	case KindProviderError:
		return ServicesResult{Success: false, Message: c.Message, Raw: raw}
	default:
		return ServicesResult{
			Success: false,
			Message: "Provider returned the service list in an unexpected format",
			Raw:     raw,
		}
	}
}

// classifyServices reduces the catalog response to a flat entry list. The
// dialect's common shapes are a bare array, a {data: [...]} envelope, and
// an object keyed by service ID.
func classifyServices(raw any) Canonical {
	switch v := raw.(type) {
	case []any:
		return Ok(v)
	case map[string]any:
		if msg, hasErr := providerErrorOf(v); hasErr {
			return ProviderError(msg)
		}
		if data, ok := v["data"]; ok {
			switch d := data.(type) {
			case []any:
				return Ok(d)
			case string:
				if entries, found := parseServicesText(d); found {
					return Ok(entries)
				}
			}
		}
		if entries, ok := flattenKeyedServices(v); ok {
			return Ok(entries)
		}
		return Unrecognized(v)
	default:
		return Unrecognized(raw)
	}
}

// flattenKeyedServices converts {"101": {...}, "102": {...}} into a list.
// Keys are visited in sorted order so the output is deterministic, and the
// key becomes the service ID when the entry lacks one.
func flattenKeyedServices(m map[string]any) ([]any, bool) {
	if len(m) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		if _, err := strconv.Atoi(k); err != nil {
			return nil, false
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})

	entries := make([]any, 0, len(m))
	for _, k := range keys {
		switch entry := m[k].(type) {
		case map[string]any:
			if _, ok := entry["service"]; !ok {
				entry = cloneMap(entry)
				entry["service"] = k
			}
			entries = append(entries, entry)
		default:
			// Scalar values still identify a service; synthesize a
			// placeholder entry around the key.
			entries = append(entries, map[string]any{
				"service": k,
				"name":    fmt.Sprintf("%v", m[k]),
			})
		}
	}
	return entries, true
}

// parseServicesText recognizes text bodies carrying an embedded JSON list,
// optionally behind a "Services:" prefix.
func parseServicesText(text string) ([]any, bool) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "Services:"))

	var entries []any
	if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// NormalizeServices converts raw catalog entries into RemoteService rows.
// It is total: malformed entries degrade to partially filled rows rather
// than failing the whole catalog, and nil entries are skipped.
func NormalizeServices(entries []any) []models.RemoteService {
	services := make([]models.RemoteService, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		m, ok := entry.(map[string]any)
		if !ok {
			// Some panels double-encode each entry as a JSON string.
			if s, isStr := entry.(string); isStr {
				var inner map[string]any
				if err := json.Unmarshal([]byte(s), &inner); err == nil {
					m = inner
				} else {
					services = append(services, models.RemoteService{Name: s})
					continue
				}
			} else {
				slog.Debug("skipping malformed catalog entry", "entry", entry)
				continue
			}
		}
		services = append(services, normalizeService(m))
	}
	return services
}

func normalizeService(m map[string]any) models.RemoteService {
	svc := models.RemoteService{
		Service:     coerceString(firstOf(m, "service", "id")),
		Name:        coerceString(m["name"]),
		Category:    coerceString(m["category"]),
		Platform:    coerceString(m["platform"]),
		Rate:        coerceFloat(firstOf(m, "rate", "price")),
		Min:         coerceInt(firstOf(m, "min", "minimum")),
		Max:         coerceInt(firstOf(m, "max", "maximum")),
		Description: coerceString(firstOf(m, "description", "desc")),
		Dripfeed:    coerceBool(m["dripfeed"]),
		Refill:      coerceBool(m["refill"]),
	}
	return svc
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return formatAmount(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}

func coerceInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

func coerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true") || b == "1"
	case float64:
		return b == 1
	}
	return false
}
