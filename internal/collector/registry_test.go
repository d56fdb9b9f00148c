package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primevalai/onyx-metrics/internal/models"
)

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewRegistry(Options{})
	a := r.Register("t1")
	b := r.Register("t1")
	assert.Same(t, a, b)
	assert.ElementsMatch(t, []string{"t1"}, r.Tenants())
}

func TestRegistry_GetAndRemove(t *testing.T) {
	r := NewRegistry(Options{})
	r.Register("t1")

	c, ok := r.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "t1", c.TenantID())

	r.Remove("t1")
	_, ok = r.Get("t1")
	assert.False(t, ok)
	assert.Empty(t, r.Tenants())
}

func TestRegistry_RecordMetricRequiresRegisteredTenant(t *testing.T) {
	r := NewRegistry(Options{})

	var verr *models.ValidationError
	require.ErrorAs(t, r.RecordMetric("ghost", "m", 1, nil), &verr)

	r.Register("t1")
	require.NoError(t, r.RecordMetric("t1", "m", 1, nil))
}

func TestRegistry_TenantsAreIsolated(t *testing.T) {
	r := NewRegistry(Options{})
	r.Register("t1")
	r.Register("t2")
	require.NoError(t, r.RecordMetric("t1", "cpu_usage_percent", 85, nil))

	c1, _ := r.Get("t1")
	c2, _ := r.Get("t2")

	_, ok := c1.CurrentValue("cpu_usage_percent")
	assert.True(t, ok)
	_, ok = c2.CurrentValue("cpu_usage_percent")
	assert.False(t, ok, "one tenant's samples never leak into another's collector")
}
