package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smmops/panel/internal/api/httputil"
	"github.com/smmops/panel/internal/provider"
)

// BalanceHandler returns a handler for GET /api/providers/{id}/balance.
func BalanceHandler(balance *provider.BalanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := balance.GetBalance(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, result)
	}
}
