package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTestDirectConnectionSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	prober := NewProber(server.Client())
	result := prober.TestDirectConnection(context.Background(), server.URL)

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Message != "Connection successful via GET" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if result.Response != "ok" {
		t.Errorf("unexpected response body: %q", result.Response)
	}
}

func TestTestDirectConnectionErrorStatusIsStillReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	prober := NewProber(server.Client())
	result := prober.TestDirectConnection(context.Background(), server.URL)

	if !result.Success {
		t.Fatalf("a 404 still proves reachability, got %+v", result)
	}
	if !strings.Contains(result.Message, "HTTP 404") {
		t.Errorf("message should carry the status, got %q", result.Message)
	}
}

func TestTestDirectConnectionConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	prober := NewProber(&http.Client{Timeout: 2 * time.Second})
	result := prober.TestDirectConnection(context.Background(), url)

	if result.Success {
		t.Fatal("expected failure against a closed port")
	}
	if !strings.HasPrefix(result.Message, "Connection refused:") {
		t.Errorf("expected a connection refused classification, got %q", result.Message)
	}
}

func TestClassifyTransportErrorNil(t *testing.T) {
	if got := classifyTransportError(nil); !strings.HasPrefix(got, "Network error:") {
		t.Errorf("nil error should classify generically, got %q", got)
	}
}
