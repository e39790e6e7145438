package provider

import (
	"net/http"
	"testing"
)

func TestProfileRegistryResolve(t *testing.T) {
	registry := NewProfileRegistry()

	tests := []struct {
		url        string
		wantName   string
		wantMethod string
	}{
		{"https://smmkings.com/api/v2", "get-only", http.MethodGet},
		{"https://panel.smmkings.net", "get-only", http.MethodGet},
		{"https://justanotherpanel.com/api/v2", "versioned", http.MethodPost},
		{"https://peakerr.com", "versioned", http.MethodPost},
		{"https://ordinary-panel.example/api/v2", "standard", http.MethodPost},
		{"not a url", "standard", http.MethodPost},
		{"", "standard", http.MethodPost},
	}

	for _, tt := range tests {
		got := registry.Resolve(tt.url)
		if got.Name != tt.wantName {
			t.Errorf("Resolve(%q).Name = %q, want %q", tt.url, got.Name, tt.wantName)
		}
		if got.Method != tt.wantMethod {
			t.Errorf("Resolve(%q).Method = %q, want %q", tt.url, got.Method, tt.wantMethod)
		}
	}
}

func TestGetOnlyProfileCarriesPathVariants(t *testing.T) {
	p := NewProfileRegistry().Resolve("https://smmkings.com")
	if len(p.PathVariants) == 0 {
		t.Fatal("GET-only panels need path variants to probe")
	}
	if p.PathVariants[0] != "" {
		t.Errorf("the configured URL must be probed first, got %q", p.PathVariants[0])
	}
}
