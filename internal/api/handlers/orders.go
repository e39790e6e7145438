package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smmops/panel/internal/api/httputil"
	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/models"
	"github.com/smmops/panel/internal/provider"
)

// PlaceOrderHandler returns a handler for POST /api/providers/{id}/orders.
func PlaceOrderHandler(orders *provider.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.OrderRequest
		if err := httputil.Decode(r, &req); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}

		result, err := orders.PlaceOrder(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, result)
	}
}

// OrderStatusHandler returns a handler for
// GET /api/providers/{id}/orders/{orderID}.
func OrderStatusHandler(orders *provider.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := orders.CheckOrderStatus(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "orderID"))
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, status)
	}
}
