package collector

import (
	"sync"

	"github.com/primevalai/onyx-metrics/internal/models"
)

// Registry maps tenant IDs to their collectors. It is constructed once
// per process and passed to callers explicitly; there is no package-level
// instance. Tenant onboarding and teardown are driven from outside via
// Register and Remove.
type Registry struct {
	opts Options

	mu         sync.RWMutex
	collectors map[string]*Collector
}

// NewRegistry creates an empty registry whose collectors share opts.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:       opts,
		collectors: make(map[string]*Collector),
	}
}

// Register returns the collector for tenantID, creating it on first use.
func (r *Registry) Register(tenantID string) *Collector {
	r.mu.RLock()
	c, ok := r.collectors[tenantID]
	r.mu.RUnlock()
	if ok {
		return c
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.collectors[tenantID]; ok {
		return c
	}
	c = NewCollector(tenantID, r.opts)
	r.collectors[tenantID] = c
	return c
}

// Get returns the collector for tenantID if it has been registered.
func (r *Registry) Get(tenantID string) (*Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[tenantID]
	return c, ok
}

// Remove discards a tenant's collector and all of its in-memory state.
func (r *Registry) Remove(tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collectors, tenantID)
}

// Tenants lists the registered tenant IDs, in no particular order.
func (r *Registry) Tenants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.collectors))
	for id := range r.collectors {
		ids = append(ids, id)
	}
	return ids
}

// RecordMetric is the ingestion entrypoint for external producers. The
// tenant must already be registered; malformed input is rejected
// synchronously.
func (r *Registry) RecordMetric(tenantID, name string, value float64, labels map[string]string) error {
	c, ok := r.Get(tenantID)
	if !ok {
		return &models.ValidationError{Field: "tenant_id", Reason: "tenant not registered"}
	}
	return c.RecordMetric(name, value, labels)
}
