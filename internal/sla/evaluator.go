// Package sla evaluates SLA definitions against metric windows. The
// evaluator is stateless; compliance is recomputed from scratch on every
// call over a snapshot of the relevant series.
package sla

import (
	"time"

	"github.com/primevalai/onyx-metrics/internal/models"
)

// DefaultWindow is the evaluation window used when none is configured.
const DefaultWindow = time.Hour

// Evaluator checks SLA definitions over a fixed trailing window.
type Evaluator struct {
	Window time.Duration
}

// NewEvaluator returns an evaluator over the given window; non-positive
// falls back to DefaultWindow.
func NewEvaluator(window time.Duration) *Evaluator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Evaluator{Window: window}
}

// Evaluate computes compliance of def over the points within
// [now-window, now]. An empty window yields a NoData result, which is
// distinct from both 0% and 100% compliance. A point violates when its
// value exceeds the threshold.
func (e *Evaluator) Evaluate(def models.SLADefinition, points []models.MetricPoint, now time.Time) models.SLAComplianceResult {
	start := now.Add(-e.Window)
	result := models.SLAComplianceResult{
		SLAName:     def.Name,
		WindowStart: start,
		WindowEnd:   now,
	}

	violations, total := 0, 0
	for _, p := range points {
		if p.Timestamp.Before(start) || p.Timestamp.After(now) {
			continue
		}
		total++
		if p.Value > def.Threshold {
			violations++
		}
	}

	if total == 0 {
		result.NoData = true
		return result
	}

	result.TotalMeasurements = total
	result.ViolationsCount = violations
	result.CompliancePercentage = float64(total-violations) / float64(total) * 100
	result.IsCompliant = result.CompliancePercentage >= def.TargetPercentage
	return result
}
