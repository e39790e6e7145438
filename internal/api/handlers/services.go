package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smmops/panel/internal/api/httputil"
	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/db"
	"github.com/smmops/panel/internal/importer"
	"github.com/smmops/panel/internal/models"
	"github.com/smmops/panel/internal/provider"
)

// FetchServicesHandler returns a handler for GET /api/providers/{id}/services.
// It queries the provider live without touching the local catalog.
func FetchServicesHandler(catalog *provider.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := catalog.FetchServices(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, result)
	}
}

type importRequest struct {
	ProfitPct *float64 `json:"profitPercentage"`
}

// ImportServicesHandler returns a handler for POST /api/providers/{id}/import.
func ImportServicesHandler(im *importer.Importer, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importRequest
		if err := httputil.Decode(r, &req); err != nil && err != io.EOF {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}

		profitPct := cfg.DefaultProfitPct
		if req.ProfitPct != nil {
			if *req.ProfitPct < 0 {
				httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "profit percentage cannot be negative")
				return
			}
			profitPct = *req.ProfitPct
		}

		result, err := im.ImportServices(r.Context(), chi.URLParam(r, "id"), profitPct)
		if err != nil {
			httputil.Error(w, http.StatusBadGateway, config.ErrorImportFailed, err.Error())
			return
		}
		httputil.JSON(w, http.StatusOK, result)
	}
}

// ListCatalogHandler returns a handler for GET /api/catalog.
// An optional ?provider= query filters by source provider.
func ListCatalogHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := store.ListCatalog(r.URL.Query().Get("provider"))
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, rows)
	}
}

// UpdateCatalogServiceHandler returns a handler for PUT /api/catalog/{id}.
// The stored markup is recomputed from the edited price so the pricing
// invariant holds after manual edits.
func UpdateCatalogServiceHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var svc models.MappedService
		if err := httputil.Decode(r, &svc); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}
		svc.ID = chi.URLParam(r, "id")
		svc.ProfitPct = importer.ProfitFromPrice(svc.Price, svc.Cost)

		if err := store.UpdateCatalogService(svc); err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, svc)
	}
}

type repriceRequest struct {
	Provider  string   `json:"provider"`
	ProfitPct *float64 `json:"profitPercentage"`
}

// RepriceCatalogHandler returns a handler for POST /api/catalog/reprice.
// It recomputes selling prices from stored costs at a new markup, across
// the whole catalog or one provider's rows.
func RepriceCatalogHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req repriceRequest
		if err := httputil.Decode(r, &req); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}
		if req.ProfitPct == nil || *req.ProfitPct < 0 {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "profitPercentage must be zero or positive")
			return
		}

		rows, err := store.ListCatalog(req.Provider)
		if err != nil {
			writeError(w, err)
			return
		}
		for _, svc := range importer.UpdatePrices(rows, *req.ProfitPct) {
			if err := store.UpdateCatalogService(svc); err != nil {
				writeError(w, err)
				return
			}
		}
		httputil.JSON(w, http.StatusOK, map[string]int{"repriced": len(rows)})
	}
}

// DeleteCatalogServiceHandler returns a handler for DELETE /api/catalog/{id}.
func DeleteCatalogServiceHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteCatalogService(chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}
