package handlers

import (
	"net/http"

	"github.com/smmops/panel/internal/api/httputil"
	"github.com/smmops/panel/internal/registry"
)

// HealthHandler returns a handler for GET /api/health. Always open.
func HealthHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	}
}

// ProviderHealthHandler returns a handler for GET /api/providers/health.
// It serves the persisted rows from the last sweep without probing.
func ProviderHealthHandler(checker *registry.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := checker.Snapshot()
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, rows)
	}
}

// RunHealthSweepHandler returns a handler for POST /api/providers/health/sweep.
// It probes every provider now and returns the fresh rows.
func RunHealthSweepHandler(checker *registry.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := checker.RunSweep(r.Context())
		httputil.JSON(w, http.StatusOK, rows)
	}
}
