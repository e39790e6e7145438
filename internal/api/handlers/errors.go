package handlers

import (
	"errors"
	"net/http"

	"github.com/smmops/panel/internal/api/httputil"
	"github.com/smmops/panel/internal/config"
)

// writeError maps domain errors to HTTP status codes and frontend codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, config.ErrProviderNotFound):
		httputil.Error(w, http.StatusNotFound, config.ErrorProviderNotFound, err.Error())
	case errors.Is(err, config.ErrProviderInactive):
		httputil.Error(w, http.StatusConflict, config.ErrorProviderInactive, err.Error())
	case errors.Is(err, config.ErrCircuitOpen):
		httputil.Error(w, http.StatusServiceUnavailable, config.ErrorCircuitOpen, err.Error())
	case errors.Is(err, config.ErrInvalidOrder):
		httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidOrder, err.Error())
	case errors.Is(err, config.ErrInvalidConfig):
		httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, err.Error())
	case errors.Is(err, config.ErrProfileNotFound):
		httputil.Error(w, http.StatusNotFound, config.ErrorProfileNotFound, err.Error())
	case errors.Is(err, config.ErrTransactionSettled):
		httputil.Error(w, http.StatusConflict, config.ErrorTransactionSettled, err.Error())
	default:
		httputil.Error(w, http.StatusInternalServerError, config.ErrorDatabase, err.Error())
	}
}
