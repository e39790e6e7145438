package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/db"
	"github.com/smmops/panel/internal/models"
)

// HealthStore persists per-provider health observations.
type HealthStore interface {
	UpsertProviderHealth(row db.ProviderHealthRow) error
	GetAllProviderHealth() ([]db.ProviderHealthRow, error)
	DeleteProviderHealth(providerID string) error
}

// HealthChecker sweeps the roster and records each provider's liveness.
type HealthChecker struct {
	registry *Registry
	store    HealthStore
}

// NewHealthChecker wires a checker over the registry and health store.
func NewHealthChecker(registry *Registry, store HealthStore) *HealthChecker {
	return &HealthChecker{registry: registry, store: store}
}

// RunSweep checks every provider concurrently and persists the results.
// Inactive providers are recorded as skipped without a network call.
func (h *HealthChecker) RunSweep(ctx context.Context) []db.ProviderHealthRow {
	providers := h.registry.Providers()
	rows := make([]db.ProviderHealthRow, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p models.Provider) {
			defer wg.Done()
			rows[i] = h.checkOne(ctx, p)
		}(i, p)
	}
	wg.Wait()

	for _, row := range rows {
		if err := h.store.UpsertProviderHealth(row); err != nil {
			slog.Warn("health row persist failed", "provider", row.ProviderID, "error", err)
		}
	}

	slog.Info("provider health sweep complete", "providers", len(rows))
	return rows
}

func (h *HealthChecker) checkOne(ctx context.Context, p models.Provider) db.ProviderHealthRow {
	row := db.ProviderHealthRow{
		ProviderID:   p.ID,
		ProviderName: p.Name,
	}

	if p.Status != models.ProviderActive {
		row.Status = "skipped"
		return row
	}

	checkCtx, cancel := context.WithTimeout(ctx, config.HealthCheckTimeout)
	defer cancel()

	started := time.Now()
	working := h.registry.TestConnection(checkCtx, p)
	row.LatencyMS = time.Since(started).Milliseconds()

	now := time.Now().UTC().Format(time.RFC3339)
	if working {
		row.Status = "healthy"
		row.LastSuccess = now
	} else {
		row.Status = "unhealthy"
		row.LastError = now
		row.LastErrorMsg = "balance check failed"
	}
	return row
}

// Snapshot returns the persisted health rows.
func (h *HealthChecker) Snapshot() ([]db.ProviderHealthRow, error) {
	return h.store.GetAllProviderHealth()
}
