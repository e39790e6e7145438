package config

import "errors"

// Sentinel errors for internal use.
var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrProviderInactive    = errors.New("provider is not active")
	ErrCircuitOpen         = errors.New("circuit breaker is open")
	ErrAllTransportsFailed = errors.New("all transport methods failed")
	ErrProviderTimeout     = errors.New("provider request timeout")
	ErrInvalidOrder        = errors.New("invalid order data")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrTransactionSettled  = errors.New("transaction already settled")
)

// Error codes shared with the admin frontend via API responses.
const (
	ErrorDatabase           = "ERROR_DATABASE"
	ErrorInvalidConfig      = "ERROR_INVALID_CONFIG"
	ErrorProviderNotFound   = "ERROR_PROVIDER_NOT_FOUND"
	ErrorProviderInactive   = "ERROR_PROVIDER_INACTIVE"
	ErrorProviderTimeout    = "ERROR_PROVIDER_TIMEOUT"
	ErrorCircuitOpen        = "ERROR_CIRCUIT_OPEN"
	ErrorInvalidRequest     = "ERROR_INVALID_REQUEST"
	ErrorInvalidOrder       = "ERROR_INVALID_ORDER"
	ErrorImportFailed       = "ERROR_IMPORT_FAILED"
	ErrorProfileNotFound    = "ERROR_PROFILE_NOT_FOUND"
	ErrorTransactionSettled = "ERROR_TRANSACTION_SETTLED"
)
