package importer

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/smmops/panel/internal/models"
	"github.com/smmops/panel/internal/provider"
	"github.com/smmops/panel/internal/registry"
)

type memProviderStore struct {
	providers []models.Provider
}

func (s *memProviderStore) LoadProviders() ([]models.Provider, error) { return s.providers, nil }
func (s *memProviderStore) SaveProviders(providers []models.Provider) error {
	s.providers = providers
	return nil
}

type stubFetcher struct {
	result provider.ServicesResult
	err    error
}

func (f *stubFetcher) FetchServices(ctx context.Context, providerID string) (provider.ServicesResult, error) {
	return f.result, f.err
}

type memCatalog struct {
	rows []models.MappedService
}

func (c *memCatalog) InsertMappedServices(services []models.MappedService) error {
	c.rows = append(c.rows, services...)
	return nil
}

func (c *memCatalog) ListCatalog(providerID string) ([]models.MappedService, error) {
	return c.rows, nil
}

func importFixture(t *testing.T, result provider.ServicesResult) (*Importer, *memCatalog, models.Provider) {
	t.Helper()
	reg := registry.New(&memProviderStore{}, provider.NewAdapterPool(provider.NewProfileRegistry()))
	prov, err := reg.AddProvider("Upstream", "https://upstream.example", "k", "")
	if err != nil {
		t.Fatalf("add provider: %v", err)
	}
	catalog := &memCatalog{}
	return New(reg, &stubFetcher{result: result}, catalog), catalog, prov
}

func TestImportServicesMapsAndPersists(t *testing.T) {
	im, catalog, prov := importFixture(t, provider.ServicesResult{
		Success: true,
		Services: []models.RemoteService{
			{Service: "101", Name: "Instagram Followers [Real]", Category: "Instagram Followers", Rate: 1.2345, Min: 10, Max: 10000},
			{Service: "", Name: "broken entry"},
			{Service: "102", Name: "TikTok Views", Category: "TikTok Views", Rate: 0.08, Min: 100, Max: 1000000},
		},
	})

	result, err := im.ImportServices(context.Background(), prov.ID, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	first := catalog.rows[0]
	if first.ID != prov.ID+"-101" {
		t.Errorf("catalog id should combine provider and service, got %q", first.ID)
	}
	if first.Platform != "instagram" {
		t.Errorf("platform not inferred, got %q", first.Platform)
	}
	if first.Category != "Followers" {
		t.Errorf("category not normalized, got %q", first.Category)
	}
	if first.Cost != 1.2345 {
		t.Errorf("cost must keep the provider rate, got %v", first.Cost)
	}
	// 1.2345 * 1.20 = 1.4814, rounded to 3 decimals.
	if math.Abs(first.Price-1.481) > 1e-9 {
		t.Errorf("price = %v, want 1.481", first.Price)
	}
	if first.ProviderName != "Upstream" || first.ProviderServiceID != "101" {
		t.Errorf("provenance fields wrong: %+v", first)
	}
}

func TestImportServicesFailedFetch(t *testing.T) {
	im, catalog, prov := importFixture(t, provider.ServicesResult{
		Success: false,
		Message: "key expired",
	})

	if _, err := im.ImportServices(context.Background(), prov.ID, 20); err == nil {
		t.Fatal("a failed catalog fetch must fail the import")
	}
	if len(catalog.rows) != 0 {
		t.Error("nothing may persist from a failed fetch")
	}
}

func TestImportServicesUnknownProvider(t *testing.T) {
	im, _, _ := importFixture(t, provider.ServicesResult{Success: true})
	if _, err := im.ImportServices(context.Background(), "provider-unknown", 20); err == nil ||
		!strings.Contains(err.Error(), "not found") {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestUpdatePricesIsPureAndConsistent(t *testing.T) {
	original := []models.MappedService{
		{ID: "a", Cost: 2.0, Price: 2.4, ProfitPct: 20},
		{ID: "b", Cost: 0.333, Price: 0.4, ProfitPct: 20},
	}

	updated := UpdatePrices(original, 50)

	if original[0].Price != 2.4 || original[0].ProfitPct != 20 {
		t.Error("input slice must not be modified")
	}
	if updated[0].Price != 3.0 || updated[0].ProfitPct != 50 {
		t.Errorf("unexpected update: %+v", updated[0])
	}
	// 0.333 * 1.5 = 0.4995, rounds to 0.5.
	if math.Abs(updated[1].Price-0.5) > 1e-9 {
		t.Errorf("rounding wrong: %v", updated[1].Price)
	}
}

func TestPriceRoundTrip(t *testing.T) {
	// ProfitFromPrice recovers the markup within rounding tolerance.
	cost := 1.234
	price := RoundPrice(registry.CalculatePrice(cost, 35))
	got := ProfitFromPrice(price, cost)
	if math.Abs(got-35) > 0.1 {
		t.Errorf("recovered markup %v too far from 35", got)
	}

	if ProfitFromPrice(1.0, 0) != 0 {
		t.Error("zero cost must not divide")
	}
}

func TestRoundPrice(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{1.0004, 1.0},
		{1.0005, 1.001},
		{0.0001, 0},
		{2.5, 2.5},
	}
	for _, tt := range tests {
		if got := RoundPrice(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("RoundPrice(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInferPlatform(t *testing.T) {
	tests := []struct {
		category, name string
		want           string
	}{
		{"Instagram Followers", "", "instagram"},
		{"", "Buy TikTok Views", "tiktok"},
		{"YT Subscribers", "", "youtube"},
		{"Growth", "FB Page Likes", "facebook"},
		{"Misc", "Generic Service", "other"},
	}
	for _, tt := range tests {
		if got := InferPlatform(tt.category, tt.name); got != tt.want {
			t.Errorf("InferPlatform(%q, %q) = %q, want %q", tt.category, tt.name, got, tt.want)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Followers", "Followers"},
		{"instagram followers", "Followers"},
		{"Watch Time", "Watch Time"},
		{"", "Uncategorized"},
		{"Something Niche", "Something Niche"},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapServiceKeepsProviderPlatform(t *testing.T) {
	prov := models.Provider{ID: "provider-x", Name: "Upstream"}
	svc := models.RemoteService{
		Service: "9", Name: "Story Views", Category: "Promo",
		Platform: "tiktok", Rate: 1,
	}

	got := MapService(svc, prov, 10)
	if got.Platform != "tiktok" {
		t.Errorf("provider-supplied platform must win over inference, got %q", got.Platform)
	}
}
