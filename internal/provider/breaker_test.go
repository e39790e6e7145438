package provider

import (
	"context"
	"testing"
	"time"

	"github.com/smmops/panel/internal/config"
)

func TestCircuitBreakerTripsAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker("Test Provider", 3, time.Minute)

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		if !cb.Allow() {
			t.Fatalf("breaker must stay closed below the threshold (failure %d)", i+1)
		}
	}

	cb.RecordFailure()
	if cb.State() != config.CircuitOpen {
		t.Fatalf("expected open after 3 failures, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("open breaker must block requests")
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("Test Provider", 1, 10*time.Millisecond)

	cb.RecordFailure()
	if cb.Allow() {
		t.Fatal("breaker should be open")
	}

	time.Sleep(20 * time.Millisecond)

	if !cb.Allow() {
		t.Fatal("cooldown elapsed, the probe request must pass")
	}
	if cb.State() != config.CircuitHalfOpen {
		t.Fatalf("expected half-open, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("only one probe may pass in half-open")
	}

	cb.RecordSuccess()
	if cb.State() != config.CircuitClosed {
		t.Fatalf("success in half-open must close the breaker, got %s", cb.State())
	}
	if cb.ConsecutiveFailures() != 0 {
		t.Errorf("failure count should reset, got %d", cb.ConsecutiveFailures())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("Test Provider", 1, 10*time.Millisecond)

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	if !cb.Allow() {
		t.Fatal("probe request must pass after cooldown")
	}

	cb.RecordFailure()
	if cb.State() != config.CircuitOpen {
		t.Fatalf("failure in half-open must reopen, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("reopened breaker must block until the next cooldown")
	}
}

func TestRateLimiterHonoursCancelledContext(t *testing.T) {
	rl := NewRateLimiter("test", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Drain the initial token so Wait would otherwise block.
	_ = rl.Wait(context.Background())

	if err := rl.Wait(ctx); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if rl.Name() != "test" {
		t.Errorf("unexpected name %q", rl.Name())
	}
}
