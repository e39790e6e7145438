package config

import "time"

// Provider wire protocol
const (
	ActionBalance  = "balance"
	ActionServices = "services"
	ActionAdd      = "add"
	ActionStatus   = "status"
)

// Timeouts
const (
	ProbeTimeout       = 10 * time.Second
	VerifyTimeout      = 15 * time.Second
	IPCheckTimeout     = 10 * time.Second
	AltMethodTimeout   = 10 * time.Second
	AdapterTimeout     = 30 * time.Second
	HealthCheckTimeout = 5 * time.Second
)

// Alternative-transport relay endpoints, in priority order after the
// direct browser-header attempt.
const (
	CORSRelayURL = "https://corsproxy.io/?"
	JSONRelayURL = "https://api.allorigins.win/get?url="
	TextRelayURL = "https://api.codetabs.com/v1/proxy?quest="
)

// Provider path variants probed by GET-only profiles, in order.
var GetPathVariants = []string{"", "/api/v2", "/api/v1", "/api", "/v2"}

// Rate Limiting
const (
	ProviderRequestsPerSecond = 5
)

// Circuit Breaker
const (
	CircuitBreakerThreshold   = 5
	CircuitBreakerCooldown    = 60 * time.Second
	CircuitBreakerHalfOpenMax = 1
)

// Circuit breaker states.
const (
	CircuitClosed   = "closed"
	CircuitOpen     = "open"
	CircuitHalfOpen = "half_open"
)

// Server
const (
	ServerReadTimeout    = 30 * time.Second
	ServerWriteTimeout   = 60 * time.Second
	ServerIdleTimeout    = 120 * time.Second
	ServerMaxHeaderBytes = 1 << 20
	ShutdownTimeout      = 15 * time.Second
)

// Logging
const (
	LogMaxAgeDays = 30
)

// HTTP client connection pool
const (
	HTTPMaxConnsPerHost     = 10
	HTTPMaxIdleConnsPerHost = 5
	HTTPMaxIdleConns        = 50
)

// Pricing
const (
	// Imported prices are rounded to this many decimal places.
	PriceDecimals = 3
)
