package importer

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/smmops/panel/internal/models"
	"github.com/smmops/panel/internal/provider"
	"github.com/smmops/panel/internal/registry"
)

// CatalogFetcher retrieves one provider's remote service catalog.
type CatalogFetcher interface {
	FetchServices(ctx context.Context, providerID string) (provider.ServicesResult, error)
}

// CatalogStore persists mapped services.
type CatalogStore interface {
	InsertMappedServices(services []models.MappedService) error
	ListCatalog(providerID string) ([]models.MappedService, error)
}

// Importer pulls provider catalogs into the local storefront catalog,
// applying markup and platform mapping on the way in.
type Importer struct {
	registry *registry.Registry
	fetcher  CatalogFetcher
	store    CatalogStore
}

// New wires the importer.
func New(reg *registry.Registry, fetcher CatalogFetcher, store CatalogStore) *Importer {
	return &Importer{registry: reg, fetcher: fetcher, store: store}
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message,omitempty"`
}

// ImportServices fetches a provider's catalog, maps every service and
// persists the result. Services without an ID or name are skipped; the
// run succeeds as long as the catalog itself was retrievable.
func (im *Importer) ImportServices(ctx context.Context, providerID string, profitPct float64) (ImportResult, error) {
	prov, ok := im.registry.GetProvider(providerID)
	if !ok {
		return ImportResult{}, fmt.Errorf("provider not found: %s", providerID)
	}

	result, err := im.fetcher.FetchServices(ctx, providerID)
	if err != nil {
		return ImportResult{}, err
	}
	if !result.Success {
		return ImportResult{Message: result.Message}, fmt.Errorf("catalog fetch failed: %s", result.Message)
	}

	mapped := make([]models.MappedService, 0, len(result.Services))
	skipped := 0
	for _, svc := range result.Services {
		if svc.Service == "" || svc.Name == "" {
			skipped++
			continue
		}
		mapped = append(mapped, MapService(svc, prov, profitPct))
	}

	if err := im.store.InsertMappedServices(mapped); err != nil {
		return ImportResult{}, fmt.Errorf("persist catalog: %w", err)
	}

	slog.Info("catalog import complete",
		"provider", prov.Name,
		"imported", len(mapped),
		"skipped", skipped,
	)
	return ImportResult{
		Imported: len(mapped),
		Skipped:  skipped,
		Message:  fmt.Sprintf("Imported %d services from %s", len(mapped), prov.Name),
	}, nil
}

// MapService converts one remote service into a catalog row. The selling
// price applies the markup to the provider rate, rounded to 3 decimals.
func MapService(svc models.RemoteService, prov models.Provider, profitPct float64) models.MappedService {
	platform := svc.Platform
	if platform == "" {
		platform = InferPlatform(svc.Category, svc.Name)
	}

	return models.MappedService{
		ID:                fmt.Sprintf("%s-%s", prov.ID, svc.Service),
		Name:              svc.Name,
		Platform:          platform,
		Category:          NormalizeCategory(svc.Category),
		Price:             RoundPrice(registry.CalculatePrice(svc.Rate, profitPct)),
		Cost:              svc.Rate,
		Min:               svc.Min,
		Max:               svc.Max,
		Description:       svc.Description,
		ProviderID:        prov.ID,
		ProviderName:      prov.Name,
		ProviderServiceID: svc.Service,
		Status:            "active",
		ProfitPct:         profitPct,
	}
}

// UpdatePrices recomputes selling prices from stored costs at a new markup.
// Pure: the input slice is not modified.
func UpdatePrices(services []models.MappedService, profitPct float64) []models.MappedService {
	out := make([]models.MappedService, len(services))
	for i, s := range services {
		s.Price = RoundPrice(registry.CalculatePrice(s.Cost, profitPct))
		s.ProfitPct = profitPct
		out[i] = s
	}
	return out
}

// ProfitFromPrice recovers the markup percentage implied by a price/cost
// pair. Zero cost yields zero rather than dividing.
func ProfitFromPrice(price, cost float64) float64 {
	if cost == 0 {
		return 0
	}
	return (price/cost - 1) * 100
}

// RoundPrice rounds a price to 3 decimal places, half away from zero.
func RoundPrice(v float64) float64 {
	return math.Round(v*1000) / 1000
}
