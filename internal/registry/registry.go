package registry

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/models"
	"github.com/smmops/panel/internal/provider"
)

// Store is the persistence surface the registry needs.
type Store interface {
	LoadProviders() ([]models.Provider, error)
	SaveProviders(providers []models.Provider) error
}

// Registry is the in-memory provider roster backed by the KV store.
// Every mutation persists the full list before returning, so a crash never
// loses an acknowledged change.
type Registry struct {
	mu        sync.RWMutex
	providers []models.Provider
	store     Store
	pool      *provider.AdapterPool
	health    HealthStore
}

// New loads the roster from the store. A store read failure degrades to an
// empty roster rather than refusing to start.
func New(store Store, pool *provider.AdapterPool) *Registry {
	providers, err := store.LoadProviders()
	if err != nil {
		slog.Warn("provider roster load failed, starting empty", "error", err)
		providers = nil
	}
	slog.Info("provider registry loaded", "count", len(providers))
	return &Registry{providers: providers, store: store, pool: pool}
}

// AttachHealthStore lets the registry clear health rows for removed
// providers. Optional; a nil health store leaves rows behind.
func (r *Registry) AttachHealthStore(hs HealthStore) {
	r.health = hs
}

// ProviderUpdate carries the mutable fields of a provider. Nil means keep.
type ProviderUpdate struct {
	Name      *string
	URL       *string
	APIKey    *string
	APISecret *string
	Status    *models.ProviderStatus
}

// AddProvider registers a new provider. Name, URL and key are required; a
// URL without a scheme gets https. The assigned ID is returned.
func (r *Registry) AddProvider(name, rawURL, apiKey, apiSecret string) (models.Provider, error) {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)
	if name == "" || rawURL == "" || strings.TrimSpace(apiKey) == "" {
		return models.Provider{}, fmt.Errorf("%w: provider name, url and api key are required", config.ErrInvalidConfig)
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	p := models.Provider{
		ID:        newProviderID(),
		Name:      name,
		URL:       rawURL,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Status:    models.ProviderActive,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)
	if err := r.store.SaveProviders(r.providers); err != nil {
		r.providers = r.providers[:len(r.providers)-1]
		return models.Provider{}, fmt.Errorf("persist provider: %w", err)
	}

	slog.Info("provider added", "id", p.ID, "name", p.Name, "url", p.URL)
	return p, nil
}

// UpdateProvider applies a partial update and persists the roster.
func (r *Registry) UpdateProvider(id string, update ProviderUpdate) (models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.providers {
		if r.providers[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Provider{}, fmt.Errorf("%w: %s", config.ErrProviderNotFound, id)
	}

	before := r.providers[idx]
	p := before
	if update.Name != nil {
		p.Name = strings.TrimSpace(*update.Name)
	}
	if update.URL != nil {
		u := strings.TrimSpace(*update.URL)
		if u != "" && !strings.Contains(u, "://") {
			u = "https://" + u
		}
		p.URL = u
	}
	if update.APIKey != nil {
		p.APIKey = *update.APIKey
	}
	if update.APISecret != nil {
		p.APISecret = *update.APISecret
	}
	if update.Status != nil {
		p.Status = *update.Status
	}

	r.providers[idx] = p
	if err := r.store.SaveProviders(r.providers); err != nil {
		r.providers[idx] = before
		return models.Provider{}, fmt.Errorf("persist provider: %w", err)
	}

	if r.pool != nil && (before.URL != p.URL || before.APIKey != p.APIKey) {
		r.pool.Evict(id)
	}

	slog.Info("provider updated", "id", id, "name", p.Name)
	return p, nil
}

// RemoveProvider deletes a provider from the roster.
func (r *Registry) RemoveProvider(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.providers {
		if r.providers[i].ID != id {
			continue
		}

		removed := r.providers[i]
		r.providers = append(r.providers[:i], r.providers[i+1:]...)
		if err := r.store.SaveProviders(r.providers); err != nil {
			r.providers = append(r.providers[:i], append([]models.Provider{removed}, r.providers[i:]...)...)
			return fmt.Errorf("persist provider removal: %w", err)
		}

		if r.pool != nil {
			r.pool.Evict(id)
		}
		if r.health != nil {
			if err := r.health.DeleteProviderHealth(id); err != nil {
				slog.Warn("health row cleanup failed", "id", id, "error", err)
			}
		}
		slog.Info("provider removed", "id", id, "name", removed.Name)
		return nil
	}
	return fmt.Errorf("%w: %s", config.ErrProviderNotFound, id)
}

// GetProvider implements provider.ProviderSource.
func (r *Registry) GetProvider(id string) (models.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.providers {
		if p.ID == id {
			return p, true
		}
	}
	return models.Provider{}, false
}

// Providers returns a copy of the roster.
func (r *Registry) Providers() []models.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// TestConnection reports whether a provider answers a balance request with
// something that looks like a working API. It accepts a full provider value
// so candidates can be tested before they are persisted, and never returns
// an error; an unreachable or erroring provider is simply not working.
func (r *Registry) TestConnection(ctx context.Context, p models.Provider) bool {
	raw, err := r.pool.Get(p).GetBalance(ctx)
	if err != nil {
		slog.Debug("connection test failed", "provider", p.Name, "url", p.URL, "error", err)
		return false
	}
	return looksLikeWorkingAPI(raw)
}

// looksLikeWorkingAPI applies loose recognition over a decoded response.
// An explicit error field always means broken; beyond that, anything
// resembling a balance payload, a list, or a non-empty object passes.
func looksLikeWorkingAPI(raw any) bool {
	switch v := raw.(type) {
	case float64:
		return true
	case []any:
		return true
	case map[string]any:
		if errVal, ok := v["error"]; ok && errVal != nil && errVal != false && errVal != "" {
			return false
		}
		if _, ok := v["balance"]; ok {
			return true
		}
		if success, ok := v["success"].(bool); ok && success {
			return true
		}
		return len(v) > 0
	default:
		return false
	}
}

// CalculatePrice applies the markup percentage to a provider rate. The
// result is unrounded; rounding happens where prices are persisted.
func CalculatePrice(rate, profitPct float64) float64 {
	return rate * (1 + profitPct/100)
}

// newProviderID generates a time-prefixed random ID. The time component
// keeps IDs roughly sortable; the random suffix prevents collisions when
// providers are added within the same millisecond.
func newProviderID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// math/rand quality is acceptable for an identifier; reuse the
		// timestamp bits instead of failing the add.
		now := time.Now().UnixNano()
		buf = []byte{byte(now), byte(now >> 8), byte(now >> 16), byte(now >> 24)}
	}
	return fmt.Sprintf("provider-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
