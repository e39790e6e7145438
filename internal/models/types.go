package models

// ProviderStatus is the lifecycle status of a configured provider.
type ProviderStatus string

const (
	ProviderActive   ProviderStatus = "active"
	ProviderInactive ProviderStatus = "inactive"
)

// Provider is a configured third-party SMM API endpoint.
// The ID is immutable once assigned; URL always carries an explicit scheme.
type Provider struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	URL       string         `json:"url"`
	APIKey    string         `json:"apiKey"`
	APISecret string         `json:"apiSecret,omitempty"`
	Status    ProviderStatus `json:"status"`
	CreatedAt string         `json:"createdAt,omitempty"`
}

// RemoteService is one catalog entry as returned by a provider, after
// field-name normalization. Never persisted independently.
type RemoteService struct {
	Service     string  `json:"service"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Platform    string  `json:"platform,omitempty"`
	Rate        float64 `json:"rate"`
	Min         int     `json:"min"`
	Max         int     `json:"max"`
	Description string  `json:"description,omitempty"`
	Dripfeed    bool    `json:"dripfeed"`
	Refill      bool    `json:"refill"`
}

// MappedService is the internal catalog entry derived from a RemoteService.
// Pricing invariant: Price = Cost * (1 + ProfitPct/100), rounded to 3 decimals.
type MappedService struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Platform          string  `json:"platform"`
	Category          string  `json:"category"`
	Price             float64 `json:"price"`
	Cost              float64 `json:"cost"`
	Min               int     `json:"min"`
	Max               int     `json:"max"`
	Description       string  `json:"description,omitempty"`
	ProviderID        string  `json:"providerId"`
	ProviderName      string  `json:"providerName"`
	ProviderServiceID string  `json:"providerServiceId"`
	Status            string  `json:"status"`
	ProfitPct         float64 `json:"profitPercentage"`
}

// OrderRequest is the caller-supplied input for placing an order.
// Runs and Interval are only forwarded when drip-feed is requested.
type OrderRequest struct {
	Service  string `json:"service"`
	Link     string `json:"link"`
	Quantity int    `json:"quantity"`
	Comments string `json:"comments,omitempty"`
	Runs     int    `json:"runs,omitempty"`
	Interval int    `json:"interval,omitempty"`
}

// TransactionStatus is the lifecycle state of a ledger transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// TransactionType distinguishes ledger credits from debits.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Profile is a customer account row: balance, role and status.
type Profile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Balance   float64 `json:"balance"`
	Role      string  `json:"role"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// Transaction is one ledger entry (credit or debit) against a profile.
type Transaction struct {
	ID        int               `json:"id"`
	ProfileID string            `json:"profileId"`
	Type      TransactionType   `json:"type"`
	Amount    float64           `json:"amount"`
	Method    string            `json:"method,omitempty"`
	Note      string            `json:"note,omitempty"`
	Status    TransactionStatus `json:"status"`
	CreatedAt string            `json:"createdAt,omitempty"`
	UpdatedAt string            `json:"updatedAt,omitempty"`
}

// PaymentOption is an enabled deposit method shown to customers.
type PaymentOption struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Details string `json:"details,omitempty"`
	Enabled bool   `json:"enabled"`
}
