package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/models"
)

func TestInterpretBalance(t *testing.T) {
	tests := []struct {
		name         string
		raw          any
		wantSuccess  bool
		wantBalance  string
		wantCurrency string
	}{
		{
			name:         "standard shape",
			raw:          map[string]any{"balance": "42.5", "currency": "EUR"},
			wantSuccess:  true,
			wantBalance:  "42.5",
			wantCurrency: "EUR",
		},
		{
			name:        "numeric balance field",
			raw:         map[string]any{"balance": 10.25},
			wantSuccess: true,
			wantBalance: "10.25",
		},
		{
			name:        "funds alias",
			raw:         map[string]any{"funds": "8.00"},
			wantSuccess: true,
			wantBalance: "8.00",
		},
		{
			name:         "bare number body",
			raw:          float64(123),
			wantSuccess:  true,
			wantBalance:  "123",
			wantCurrency: "USD",
		},
		{
			name:        "text body",
			raw:         map[string]any{"data": "Balance: 7.25 USD", "success": true},
			wantSuccess: true,
			wantBalance: "7.25",
		},
		{
			name:        "json document behind the text prefix",
			raw:         map[string]any{"data": `Balance: {"funds": "42.5"}`, "success": true},
			wantSuccess: true,
			wantBalance: "42.5",
		},
		{
			name:        "case insensitive key",
			raw:         map[string]any{"Balance": "3.00"},
			wantSuccess: true,
			wantBalance: "3.00",
		},
		{
			name:        "explicit error",
			raw:         map[string]any{"error": "bad key"},
			wantSuccess: false,
		},
		{
			name:        "boolean error with message",
			raw:         map[string]any{"error": true, "message": "suspended"},
			wantSuccess: false,
		},
		{
			name:        "unrecognized array",
			raw:         []any{1, 2, 3},
			wantSuccess: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interpretBalance(tt.raw)
			if got.Success != tt.wantSuccess {
				t.Fatalf("success = %v, want %v (%+v)", got.Success, tt.wantSuccess, got)
			}
			if got.Balance != tt.wantBalance {
				t.Errorf("balance = %q, want %q", got.Balance, tt.wantBalance)
			}
			if got.Currency != tt.wantCurrency {
				t.Errorf("currency = %q, want %q", got.Currency, tt.wantCurrency)
			}
			if !tt.wantSuccess && got.Message == "" {
				t.Error("failures must carry a message")
			}
		})
	}
}

func TestInterpretBalanceErrorMessagePropagates(t *testing.T) {
	got := interpretBalance(map[string]any{"error": "bad key"})
	if got.Message != "bad key" {
		t.Errorf("provider message should pass through, got %q", got.Message)
	}
}

func TestGetBalanceProviderChecks(t *testing.T) {
	conn := &fakeConnector{balanceResp: map[string]any{"balance": "1"}}
	pool := poolWith(conn)

	inactive := activeProvider("p2")
	inactive.Status = models.ProviderInactive

	svc := NewBalanceService(fakeSource{"p1": activeProvider("p1"), "p2": inactive}, pool)
	ctx := context.Background()

	if _, err := svc.GetBalance(ctx, "missing"); !errors.Is(err, config.ErrProviderNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
	if _, err := svc.GetBalance(ctx, "p2"); !errors.Is(err, config.ErrProviderInactive) {
		t.Errorf("expected inactive, got %v", err)
	}
	if conn.balanceCalls != 0 {
		t.Errorf("rejected lookups must not reach the provider, got %d calls", conn.balanceCalls)
	}

	result, err := svc.GetBalance(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.Balance != "1" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestGetBalanceTransportErrorIsSoft(t *testing.T) {
	conn := &fakeConnector{err: errors.New("Request timeout: deadline exceeded")}
	svc := NewBalanceService(fakeSource{"p1": activeProvider("p1")}, poolWith(conn))

	result, err := svc.GetBalance(context.Background(), "p1")
	if err != nil {
		t.Fatalf("transport failures report through the result, got error %v", err)
	}
	if result.Success {
		t.Error("expected failure")
	}
	if result.Message == "" {
		t.Error("expected the transport error in the message")
	}
}
