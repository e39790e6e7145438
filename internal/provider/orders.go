package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/models"
)

// OrderResult is the normalized outcome of placing an order.
type OrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Message string `json:"message,omitempty"`
	Raw     any    `json:"raw,omitempty"`
}

// OrderService forwards orders to providers and normalizes their replies.
type OrderService struct {
	source ProviderSource
	pool   *AdapterPool
}

// NewOrderService wires the service over a provider source and pool.
func NewOrderService(source ProviderSource, pool *AdapterPool) *OrderService {
	return &OrderService{source: source, pool: pool}
}

// PlaceOrder validates the request locally, then forwards it. Validation
// failures never reach the network.
func (s *OrderService) PlaceOrder(ctx context.Context, providerID string, req models.OrderRequest) (OrderResult, error) {
	if err := validateOrder(req); err != nil {
		return OrderResult{}, err
	}

	prov, ok := s.source.GetProvider(providerID)
	if !ok {
		return OrderResult{}, fmt.Errorf("%w: %s", config.ErrProviderNotFound, providerID)
	}
	if prov.Status != models.ProviderActive {
		return OrderResult{}, fmt.Errorf("%w: %s", config.ErrProviderInactive, prov.Name)
	}

	raw, err := s.pool.Get(prov).AddOrder(ctx, req)
	if err != nil {
		return OrderResult{Success: false, Message: err.Error()}, nil
	}
	return interpretOrder(prov.Name, raw), nil
}

// CheckOrderStatus fetches the provider-side status of one order. Status
// payloads vary too much across panels to normalize, so the decoded body
// passes through as-is.
func (s *OrderService) CheckOrderStatus(ctx context.Context, providerID, orderID string) (any, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("%w: order id is required", config.ErrInvalidOrder)
	}

	prov, ok := s.source.GetProvider(providerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrProviderNotFound, providerID)
	}
	if prov.Status != models.ProviderActive {
		return nil, fmt.Errorf("%w: %s", config.ErrProviderInactive, prov.Name)
	}

	return s.pool.Get(prov).GetOrderStatus(ctx, orderID)
}

func validateOrder(req models.OrderRequest) error {
	switch {
	case strings.TrimSpace(req.Service) == "":
		return fmt.Errorf("%w: service is required", config.ErrInvalidOrder)
	case strings.TrimSpace(req.Link) == "":
		return fmt.Errorf("%w: link is required", config.ErrInvalidOrder)
	case req.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", config.ErrInvalidOrder)
	}
	return nil
}

// interpretOrder extracts the order ID from the usual reply shapes:
// {"order": 123}, {"id": 123}, or a bare number. A reply without an error
// field still counts as accepted even when no ID can be found, since some
// panels acknowledge with an empty object.
func interpretOrder(providerName string, raw any) OrderResult {
	switch v := raw.(type) {
	case float64:
		return OrderResult{Success: true, OrderID: formatAmount(v), Raw: raw}
	case map[string]any:
		if msg, hasErr := providerErrorOf(v); hasErr {
			return OrderResult{Success: false, Message: msg, Raw: raw}
		}
		if id := coerceString(firstOf(v, "order", "id")); id != "" {
			return OrderResult{Success: true, OrderID: id, Raw: raw}
		}
		slog.Warn("order accepted without an order id",
			"provider", providerName,
			"response", v,
		)
		return OrderResult{Success: true, Raw: raw}
	default:
		return OrderResult{
			Success: false,
			Message: "Provider returned the order reply in an unexpected format",
			Raw:     raw,
		}
	}
}
