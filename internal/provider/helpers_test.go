package provider

import (
	"context"

	"github.com/smmops/panel/internal/models"
)

// fakeConnector satisfies Connector with canned responses and call counts.
type fakeConnector struct {
	balanceResp  any
	servicesResp any
	orderResp    any
	statusResp   any
	err          error

	balanceCalls  int
	servicesCalls int
	orderCalls    int
	statusCalls   int
}

func (f *fakeConnector) GetBalance(ctx context.Context) (any, error) {
	f.balanceCalls++
	return f.balanceResp, f.err
}

func (f *fakeConnector) GetServices(ctx context.Context) (any, error) {
	f.servicesCalls++
	return f.servicesResp, f.err
}

func (f *fakeConnector) AddOrder(ctx context.Context, req models.OrderRequest) (any, error) {
	f.orderCalls++
	return f.orderResp, f.err
}

func (f *fakeConnector) GetOrderStatus(ctx context.Context, orderID string) (any, error) {
	f.statusCalls++
	return f.statusResp, f.err
}

// fakeSource is an in-memory ProviderSource.
type fakeSource map[string]models.Provider

func (s fakeSource) GetProvider(id string) (models.Provider, bool) {
	p, ok := s[id]
	return p, ok
}

func activeProvider(id string) models.Provider {
	return models.Provider{
		ID:     id,
		Name:   "Test Provider",
		URL:    "https://provider.example",
		APIKey: "key-123",
		Status: models.ProviderActive,
	}
}

// poolWith returns an AdapterPool whose factory always yields conn.
func poolWith(conn Connector) *AdapterPool {
	pool := NewAdapterPool(NewProfileRegistry())
	pool.SetFactory(func(models.Provider) Connector { return conn })
	return pool
}
