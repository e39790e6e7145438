package registry

import (
	"context"
	"testing"

	"github.com/smmops/panel/internal/db"
	"github.com/smmops/panel/internal/models"
)

type memHealthStore struct {
	rows map[string]db.ProviderHealthRow
}

func newMemHealthStore() *memHealthStore {
	return &memHealthStore{rows: map[string]db.ProviderHealthRow{}}
}

func (s *memHealthStore) UpsertProviderHealth(row db.ProviderHealthRow) error {
	s.rows[row.ProviderID] = row
	return nil
}

func (s *memHealthStore) GetAllProviderHealth() ([]db.ProviderHealthRow, error) {
	out := make([]db.ProviderHealthRow, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	return out, nil
}

func (s *memHealthStore) DeleteProviderHealth(providerID string) error {
	delete(s.rows, providerID)
	return nil
}

func TestRunSweepRecordsAllProviders(t *testing.T) {
	r, _ := newTestRegistry(t, &stubConnector{resp: map[string]any{"balance": "1"}})
	healthy, _ := r.AddProvider("Healthy", "https://up.example", "k", "")

	inactive := models.ProviderInactive
	skipped, _ := r.AddProvider("Paused", "https://paused.example", "k", "")
	r.UpdateProvider(skipped.ID, ProviderUpdate{Status: &inactive})

	store := newMemHealthStore()
	checker := NewHealthChecker(r, store)

	rows := checker.RunSweep(context.Background())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if got := store.rows[healthy.ID]; got.Status != "healthy" || got.LastSuccess == "" {
		t.Errorf("healthy provider row wrong: %+v", got)
	}
	if got := store.rows[skipped.ID]; got.Status != "skipped" {
		t.Errorf("inactive provider must be skipped, got %+v", got)
	}
}

func TestRunSweepMarksFailures(t *testing.T) {
	r, _ := newTestRegistry(t, &stubConnector{resp: map[string]any{"error": "key invalid"}})
	p, _ := r.AddProvider("Broken", "https://down.example", "k", "")

	store := newMemHealthStore()
	rows := NewHealthChecker(r, store).RunSweep(context.Background())

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := store.rows[p.ID]
	if got.Status != "unhealthy" || got.LastError == "" || got.LastErrorMsg == "" {
		t.Errorf("failure not recorded: %+v", got)
	}
}

func TestSnapshotRoundTrips(t *testing.T) {
	store := newMemHealthStore()
	store.UpsertProviderHealth(db.ProviderHealthRow{ProviderID: "p1", Status: "healthy"})

	r, _ := newTestRegistry(t, nil)
	rows, err := NewHealthChecker(r, store).Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ProviderID != "p1" {
		t.Errorf("unexpected snapshot: %+v", rows)
	}
}
