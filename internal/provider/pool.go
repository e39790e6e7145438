package provider

import (
	"sync"

	"github.com/smmops/panel/internal/models"
)

// AdapterPool caches one adapter per provider so limiter and breaker state
// survive across calls. An adapter is rebuilt when the provider's URL or
// key changes, which also resets its breaker.
type AdapterPool struct {
	mu       sync.Mutex
	adapters map[string]*pooledAdapter
	profiles *ProfileRegistry
	factory  ConnectorFactory
}

type pooledAdapter struct {
	conn   Connector
	url    string
	apiKey string
}

// NewAdapterPool builds a pool with the default adapter factory.
func NewAdapterPool(profiles *ProfileRegistry) *AdapterPool {
	p := &AdapterPool{
		adapters: make(map[string]*pooledAdapter),
		profiles: profiles,
	}
	p.factory = func(prov models.Provider) Connector {
		return NewAdapter(prov, p.profiles)
	}
	return p
}

// SetFactory overrides adapter construction. Used by tests.
func (p *AdapterPool) SetFactory(f ConnectorFactory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factory = f
	p.adapters = make(map[string]*pooledAdapter)
}

// Get returns the cached connector for the provider, rebuilding it when
// the provider's credentials or endpoint drifted since it was cached.
func (p *AdapterPool) Get(prov models.Provider) Connector {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.adapters[prov.ID]; ok && cached.url == prov.URL && cached.apiKey == prov.APIKey {
		return cached.conn
	}

	conn := p.factory(prov)
	p.adapters[prov.ID] = &pooledAdapter{conn: conn, url: prov.URL, apiKey: prov.APIKey}
	return conn
}

// Evict drops the cached adapter for a provider, if any.
func (p *AdapterPool) Evict(providerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.adapters, providerID)
}
