package db

import (
	"testing"

	"github.com/smmops/panel/internal/models"
)

func TestLoadProviders_Empty(t *testing.T) {
	database := setupTestDB(t)

	providers, err := database.LoadProviders()
	if err != nil {
		t.Fatalf("LoadProviders() error = %v", err)
	}
	if len(providers) != 0 {
		t.Errorf("expected empty provider list, got %d entries", len(providers))
	}
}

func TestSaveLoadProviders_RoundTrip(t *testing.T) {
	database := setupTestDB(t)

	in := []models.Provider{
		{ID: "provider-1", Name: "Alpha SMM", URL: "https://alpha.example/api/v2", APIKey: "k1", Status: models.ProviderActive},
		{ID: "provider-2", Name: "Beta SMM", URL: "https://beta.example", APIKey: "k2", APISecret: "s2", Status: models.ProviderInactive},
	}

	if err := database.SaveProviders(in); err != nil {
		t.Fatalf("SaveProviders() error = %v", err)
	}

	out, err := database.LoadProviders()
	if err != nil {
		t.Fatalf("LoadProviders() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(out))
	}
	if out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestLoadProviders_CorruptPayloadDegradesToEmpty(t *testing.T) {
	database := setupTestDB(t)

	if err := database.SetValue("providers", "{not json"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	providers, err := database.LoadProviders()
	if err != nil {
		t.Fatalf("LoadProviders() should not fail on corrupt payload, got %v", err)
	}
	if len(providers) != 0 {
		t.Errorf("expected empty list for corrupt payload, got %d entries", len(providers))
	}
}
