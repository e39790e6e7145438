package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smmops/panel/internal/api/httputil"
	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/models"
	"github.com/smmops/panel/internal/provider"
	"github.com/smmops/panel/internal/registry"
)

// providerView is the provider row sent to the admin frontend. The API
// key is masked; the secret never leaves the server.
type providerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	APIKey    string `json:"apiKey"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func viewOf(p models.Provider) providerView {
	return providerView{
		ID:        p.ID,
		Name:      p.Name,
		URL:       p.URL,
		APIKey:    maskKey(p.APIKey),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
	}
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// ListProvidersHandler returns a handler for GET /api/providers.
func ListProvidersHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers := reg.Providers()
		views := make([]providerView, len(providers))
		for i, p := range providers {
			views[i] = viewOf(p)
		}
		httputil.JSON(w, http.StatusOK, views)
	}
}

type addProviderRequest struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
}

// AddProviderHandler returns a handler for POST /api/providers.
func AddProviderHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addProviderRequest
		if err := httputil.Decode(r, &req); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}

		p, err := reg.AddProvider(req.Name, req.URL, req.APIKey, req.APISecret)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusCreated, viewOf(p))
	}
}

type updateProviderRequest struct {
	Name      *string `json:"name"`
	URL       *string `json:"url"`
	APIKey    *string `json:"apiKey"`
	APISecret *string `json:"apiSecret"`
	Status    *string `json:"status"`
}

// UpdateProviderHandler returns a handler for PUT /api/providers/{id}.
func UpdateProviderHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProviderRequest
		if err := httputil.Decode(r, &req); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}

		update := registry.ProviderUpdate{
			Name:      req.Name,
			URL:       req.URL,
			APIKey:    req.APIKey,
			APISecret: req.APISecret,
		}
		if req.Status != nil {
			status := models.ProviderStatus(*req.Status)
			if status != models.ProviderActive && status != models.ProviderInactive {
				httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "status must be active or inactive")
				return
			}
			update.Status = &status
		}

		p, err := reg.UpdateProvider(chi.URLParam(r, "id"), update)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, viewOf(p))
	}
}

// DeleteProviderHandler returns a handler for DELETE /api/providers/{id}.
func DeleteProviderHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reg.RemoveProvider(chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

// TestProviderHandler returns a handler for POST /api/providers/{id}/test.
func TestProviderHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, ok := reg.GetProvider(id)
		if !ok {
			httputil.Error(w, http.StatusNotFound, config.ErrorProviderNotFound, "provider not found: "+id)
			return
		}
		working := reg.TestConnection(r.Context(), p)
		httputil.JSON(w, http.StatusOK, map[string]bool{"working": working})
	}
}

type testCandidateRequest struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	APIKey string `json:"apiKey"`
}

// TestCandidateHandler returns a handler for POST /api/providers/test. It
// live-tests a provider configuration without persisting it, so operators
// can validate credentials before saving.
func TestCandidateHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req testCandidateRequest
		if err := httputil.Decode(r, &req); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}

		rawURL := strings.TrimSpace(req.URL)
		if rawURL == "" {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "url is required")
			return
		}
		if !strings.Contains(rawURL, "://") {
			rawURL = "https://" + rawURL
		}

		candidate := models.Provider{
			Name:   req.Name,
			URL:    rawURL,
			APIKey: req.APIKey,
			Status: models.ProviderActive,
		}
		working := reg.TestConnection(r.Context(), candidate)
		httputil.JSON(w, http.StatusOK, map[string]bool{"working": working})
	}
}

// TroubleshootProviderHandler returns a handler for
// POST /api/providers/{id}/troubleshoot.
func TroubleshootProviderHandler(reg *registry.Registry, ts *provider.Troubleshooter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, ok := reg.GetProvider(id)
		if !ok {
			httputil.Error(w, http.StatusNotFound, config.ErrorProviderNotFound, "provider not found: "+id)
			return
		}

		report := ts.Run(r.Context(), p.URL, p.APIKey)
		httputil.JSON(w, http.StatusOK, report)
	}
}
