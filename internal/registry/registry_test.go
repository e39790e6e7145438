package registry

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/db"
	"github.com/smmops/panel/internal/models"
	"github.com/smmops/panel/internal/provider"
)

// memStore is an in-memory Store with optional forced failures.
type memStore struct {
	providers []models.Provider
	saveErr   error
	saves     int
}

func (s *memStore) LoadProviders() ([]models.Provider, error) {
	return s.providers, nil
}

func (s *memStore) SaveProviders(providers []models.Provider) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.providers = append([]models.Provider(nil), providers...)
	return nil
}

type stubConnector struct {
	resp any
	err  error
}

func (c *stubConnector) GetBalance(ctx context.Context) (any, error)      { return c.resp, c.err }
func (c *stubConnector) GetServices(ctx context.Context) (any, error)     { return c.resp, c.err }
func (c *stubConnector) GetOrderStatus(ctx context.Context, orderID string) (any, error) {
	return c.resp, c.err
}
func (c *stubConnector) AddOrder(ctx context.Context, req models.OrderRequest) (any, error) {
	return c.resp, c.err
}

func newTestRegistry(t *testing.T, conn provider.Connector) (*Registry, *memStore) {
	t.Helper()
	store := &memStore{}
	pool := provider.NewAdapterPool(provider.NewProfileRegistry())
	if conn != nil {
		pool.SetFactory(func(models.Provider) provider.Connector { return conn })
	}
	return New(store, pool), store
}

func TestAddProviderAssignsIDAndPersists(t *testing.T) {
	r, store := newTestRegistry(t, nil)

	p, err := r.AddProvider("SMM Kings", "smmkings.com/api/v2", "key-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(p.ID, "provider-") {
		t.Errorf("unexpected id format: %q", p.ID)
	}
	if p.URL != "https://smmkings.com/api/v2" {
		t.Errorf("scheme not normalized: %q", p.URL)
	}
	if p.Status != models.ProviderActive {
		t.Errorf("new providers default to active, got %q", p.Status)
	}
	if store.saves != 1 {
		t.Errorf("the mutation must persist, got %d saves", store.saves)
	}

	got, ok := r.GetProvider(p.ID)
	if !ok || got.Name != "SMM Kings" {
		t.Errorf("lookup after add failed: %+v ok=%v", got, ok)
	}
}

func TestAddProviderValidation(t *testing.T) {
	r, store := newTestRegistry(t, nil)

	cases := []struct{ name, url, key string }{
		{"", "https://a.example", "k"},
		{"A", "", "k"},
		{"A", "https://a.example", "  "},
	}
	for _, c := range cases {
		if _, err := r.AddProvider(c.name, c.url, c.key, ""); err == nil {
			t.Errorf("expected validation error for %+v", c)
		}
	}
	if store.saves != 0 {
		t.Errorf("rejected adds must not persist, got %d saves", store.saves)
	}
}

func TestAddProviderIDsAreUnique(t *testing.T) {
	r, _ := newTestRegistry(t, nil)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := r.AddProvider("P", "https://p.example", "k", "")
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestUpdateProviderPartial(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	p, _ := r.AddProvider("P", "https://p.example", "k", "")

	inactive := models.ProviderInactive
	newKey := "rotated"
	got, err := r.UpdateProvider(p.ID, ProviderUpdate{APIKey: &newKey, Status: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.APIKey != "rotated" || got.Status != models.ProviderInactive {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Name != "P" || got.URL != "https://p.example" {
		t.Errorf("untouched fields must survive: %+v", got)
	}

	if _, err := r.UpdateProvider("provider-unknown", ProviderUpdate{}); !errors.Is(err, config.ErrProviderNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestUpdateProviderRollsBackOnPersistFailure(t *testing.T) {
	r, store := newTestRegistry(t, nil)
	p, _ := r.AddProvider("P", "https://p.example", "k", "")

	store.saveErr = errors.New("disk full")
	name := "Renamed"
	if _, err := r.UpdateProvider(p.ID, ProviderUpdate{Name: &name}); err == nil {
		t.Fatal("expected persist failure to surface")
	}

	got, _ := r.GetProvider(p.ID)
	if got.Name != "P" {
		t.Errorf("failed update must roll back, got %+v", got)
	}
}

func TestRemoveProvider(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	p, _ := r.AddProvider("P", "https://p.example", "k", "")

	if err := r.RemoveProvider(p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.GetProvider(p.ID); ok {
		t.Error("removed provider still resolvable")
	}
	if err := r.RemoveProvider(p.ID); !errors.Is(err, config.ErrProviderNotFound) {
		t.Errorf("double remove should report not-found, got %v", err)
	}
}

func TestProvidersReturnsCopy(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	r.AddProvider("P", "https://p.example", "k", "")

	list := r.Providers()
	list[0].Name = "mutated"

	fresh := r.Providers()
	if fresh[0].Name != "P" {
		t.Error("Providers must return a defensive copy")
	}
}

func TestTestConnectionHeuristics(t *testing.T) {
	tests := []struct {
		name string
		conn *stubConnector
		want bool
	}{
		{"balance object", &stubConnector{resp: map[string]any{"balance": "5.00"}}, true},
		{"success flag", &stubConnector{resp: map[string]any{"success": true}}, true},
		{"service list", &stubConnector{resp: []any{map[string]any{"service": "1"}}}, true},
		{"bare number", &stubConnector{resp: float64(9)}, true},
		{"non-empty object", &stubConnector{resp: map[string]any{"status": "ok"}}, true},
		{"explicit error", &stubConnector{resp: map[string]any{"error": "bad key"}}, false},
		{"empty object", &stubConnector{resp: map[string]any{}}, false},
		{"transport failure", &stubConnector{err: errors.New("Request timeout: x")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry(t, tt.conn)
			p, _ := r.AddProvider("P", "https://p.example", "k", "")

			if got := r.TestConnection(context.Background(), p); got != tt.want {
				t.Errorf("TestConnection = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTestConnectionCandidateBeforeSave(t *testing.T) {
	r, _ := newTestRegistry(t, &stubConnector{resp: map[string]any{"balance": "1"}})

	candidate := models.Provider{
		Name:   "New Panel",
		URL:    "https://new.example",
		APIKey: "k",
		Status: models.ProviderActive,
	}
	if !r.TestConnection(context.Background(), candidate) {
		t.Error("a candidate must be testable before it is persisted")
	}
	if len(r.Providers()) != 0 {
		t.Error("testing a candidate must not register it")
	}
}

func TestRemoveProviderClearsHealthRows(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	health := newMemHealthStore()
	r.AttachHealthStore(health)

	p, _ := r.AddProvider("P", "https://p.example", "k", "")
	health.UpsertProviderHealth(db.ProviderHealthRow{ProviderID: p.ID, Status: "healthy"})

	if err := r.RemoveProvider(p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := health.rows[p.ID]; ok {
		t.Error("removing a provider must drop its health row")
	}
}

func TestCalculatePrice(t *testing.T) {
	tests := []struct {
		rate, pct, want float64
	}{
		{1.00, 20, 1.20},
		{0, 50, 0},
		{2.50, 0, 2.50},
		{0.001, 100, 0.002},
	}
	for _, tt := range tests {
		if got := CalculatePrice(tt.rate, tt.pct); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CalculatePrice(%v, %v) = %v, want %v", tt.rate, tt.pct, got, tt.want)
		}
	}
}
