package collector

import (
	"fmt"

	"github.com/primevalai/onyx-metrics/internal/models"
)

// AddSLADefinition registers a new SLA for the tenant. Definitions are
// immutable once added; changing one means removing it and re-adding.
func (c *Collector) AddSLADefinition(def models.SLADefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	for _, existing := range c.slaDefs {
		if existing.Name == def.Name {
			return &models.ValidationError{
				Field:  "sla name",
				Reason: fmt.Sprintf("%q already defined; remove it before re-adding", def.Name),
			}
		}
	}
	c.slaDefs = append(c.slaDefs, def)
	c.logger.Info("sla definition added", "sla", def.Name, "metric", def.MetricName)
	return nil
}

// RemoveSLADefinition drops the named SLA and its compliance state.
// Returns false when no such definition exists.
func (c *Collector) RemoveSLADefinition(name string) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	for i, def := range c.slaDefs {
		if def.Name == name {
			c.slaDefs = append(c.slaDefs[:i], c.slaDefs[i+1:]...)
			delete(c.slaCompliant, name)
			return true
		}
	}
	return false
}

// SLADefinitions returns a copy of the registered definitions.
func (c *Collector) SLADefinitions() []models.SLADefinition {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	out := make([]models.SLADefinition, len(c.slaDefs))
	copy(out, c.slaDefs)
	return out
}

// CheckSLACompliance evaluates every registered SLA over its trailing
// window. An SLA whose metric has no in-window samples reports NoData
// rather than 0% or 100%. A transition from compliant (or first
// observation) to non-compliant dispatches an alert.
func (c *Collector) CheckSLACompliance() []models.SLAComplianceResult {
	defs := c.SLADefinitions()
	now := c.now()

	results := make([]models.SLAComplianceResult, 0, len(defs))
	for _, def := range defs {
		var points []models.MetricPoint
		if s, ok := c.lookup(def.MetricName); ok {
			points = s.Snapshot()
		}
		result := c.evaluator.Evaluate(def, points, now)
		results = append(results, result)
		if result.NoData {
			continue
		}

		c.stateMu.Lock()
		was, seen := c.slaCompliant[def.Name]
		c.slaCompliant[def.Name] = result.IsCompliant
		c.stateMu.Unlock()

		if !result.IsCompliant && (!seen || was) {
			c.dispatch(models.AlertSLAViolation, def.MetricName,
				fmt.Sprintf("SLA %q non-compliant: %.1f%% < target %.1f%%",
					def.Name, result.CompliancePercentage, def.TargetPercentage))
		}
	}
	return results
}
