package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smmops/panel/internal/api/httputil"
	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/db"
	"github.com/smmops/panel/internal/models"
)

// ListProfilesHandler returns a handler for GET /api/profiles.
func ListProfilesHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := store.ListProfiles()
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, profiles)
	}
}

// GetProfileHandler returns a handler for GET /api/profiles/{id}.
func GetProfileHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := store.GetProfile(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, profile)
	}
}

// UpsertProfileHandler returns a handler for PUT /api/profiles/{id}.
func UpsertProfileHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var profile models.Profile
		if err := httputil.Decode(r, &profile); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}
		profile.ID = chi.URLParam(r, "id")
		if strings.TrimSpace(profile.ID) == "" {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "profile id is required")
			return
		}

		if err := store.UpsertProfile(profile); err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, profile)
	}
}

// ListTransactionsHandler returns a handler for GET /api/transactions.
// An optional ?profile= query filters by profile.
func ListTransactionsHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := store.ListTransactions(r.URL.Query().Get("profile"))
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, txs)
	}
}

type createTransactionRequest struct {
	ProfileID string  `json:"profileId"`
	Type      string  `json:"type"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Note      string  `json:"note"`
}

// CreateTransactionHandler returns a handler for POST /api/transactions.
// New transactions always start pending; settlement is a separate step.
func CreateTransactionHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTransactionRequest
		if err := httputil.Decode(r, &req); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}

		txType := models.TransactionType(req.Type)
		if txType != models.TransactionCredit && txType != models.TransactionDebit {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "type must be credit or debit")
			return
		}
		if req.Amount <= 0 {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "amount must be positive")
			return
		}
		if _, err := store.GetProfile(req.ProfileID); err != nil {
			writeError(w, err)
			return
		}

		id, err := store.InsertTransaction(models.Transaction{
			ProfileID: req.ProfileID,
			Type:      txType,
			Amount:    req.Amount,
			Method:    req.Method,
			Note:      req.Note,
			Status:    models.TransactionPending,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		tx, err := store.GetTransaction(id)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusCreated, tx)
	}
}

type settleRequest struct {
	Status string `json:"status"`
}

// SettleTransactionHandler returns a handler for
// POST /api/transactions/{id}/settle. Completing a credit adds to the
// profile balance; completing a debit subtracts. Cancelling touches nothing.
func SettleTransactionHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "transaction id must be numeric")
			return
		}

		var req settleRequest
		if err := httputil.Decode(r, &req); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}

		status := models.TransactionStatus(req.Status)
		if status != models.TransactionCompleted && status != models.TransactionCancelled {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "status must be completed or cancelled")
			return
		}

		if err := store.SettleTransaction(id, status); err != nil {
			writeError(w, err)
			return
		}

		tx, err := store.GetTransaction(id)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, tx)
	}
}

// ListPaymentOptionsHandler returns a handler for GET /api/payment-options.
func ListPaymentOptionsHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := store.ListPaymentOptions()
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, options)
	}
}

// UpsertPaymentOptionHandler returns a handler for POST /api/payment-options.
func UpsertPaymentOptionHandler(store *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var option models.PaymentOption
		if err := httputil.Decode(r, &option); err != nil {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(option.Name) == "" {
			httputil.Error(w, http.StatusBadRequest, config.ErrorInvalidRequest, "payment option name is required")
			return
		}

		id, err := store.UpsertPaymentOption(option)
		if err != nil {
			writeError(w, err)
			return
		}
		option.ID = id
		httputil.JSON(w, http.StatusOK, option)
	}
}
