// Package health computes the weighted composite health score over a
// tenant's current metric values. The scorer is a pure function: same
// inputs, same score, nothing stored.
package health

import (
	"fmt"

	"github.com/primevalai/onyx-metrics/internal/models"
)

// Metric names the scorer reads from the collector.
const (
	MetricErrorRate    = "error_rate"
	MetricResponseTime = "response_time_ms"
	MetricCPUUsage     = "cpu_usage_percent"
	MetricMemoryUsage  = "memory_usage_percent"
	MetricStorageUsage = "storage_usage_percent"
	MetricThroughput   = "throughput_ops_sec"
)

// Component weights. They sum to 1.0.
const (
	weightError       = 0.25
	weightPerformance = 0.20
	weightCPU         = 0.15
	weightMemory      = 0.15
	weightStorage     = 0.10
	weightThroughput  = 0.15
)

// Recommendation triggers operate on the raw inputs, not the scores.
const (
	triggerErrorRate    = 0.05
	triggerResponseTime = 1000
	triggerCPU          = 80
	triggerMemory       = 85
	triggerStorage      = 90
	triggerThroughput   = 10
)

// Score combines the current values of the six component metrics into a
// 0-100 composite. A metric the tenant has never recorded scores as its
// best value and triggers no recommendation.
func Score(current map[string]float64) models.HealthScore {
	errorScore := 100.0
	perfScore := 100.0
	cpuScore := 100.0
	memScore := 100.0
	storageScore := 100.0
	throughputScore := 100.0

	var recs []string

	if v, ok := current[MetricErrorRate]; ok {
		errorScore = clamp(100 - v*100)
		if v > triggerErrorRate {
			recs = append(recs, fmt.Sprintf("High error rate (%.2f%%): investigate failing operations", v*100))
		}
	}
	if v, ok := current[MetricResponseTime]; ok {
		perfScore = clamp(100 - v/10)
		if v > triggerResponseTime {
			recs = append(recs, fmt.Sprintf("Slow responses (%.0fms): profile hot paths or add capacity", v))
		}
	}
	if v, ok := current[MetricCPUUsage]; ok {
		cpuScore = usageScore(v)
		if v > triggerCPU {
			recs = append(recs, fmt.Sprintf("CPU usage at %.0f%%: consider scaling compute", v))
		}
	}
	if v, ok := current[MetricMemoryUsage]; ok {
		memScore = usageScore(v)
		if v > triggerMemory {
			recs = append(recs, fmt.Sprintf("Memory usage at %.0f%%: check for leaks or scale memory", v))
		}
	}
	if v, ok := current[MetricStorageUsage]; ok {
		storageScore = usageScore(v)
		if v > triggerStorage {
			recs = append(recs, fmt.Sprintf("Storage at %.0f%%: archive old events or expand volumes", v))
		}
	}
	if v, ok := current[MetricThroughput]; ok {
		if v > 100 {
			throughputScore = 100
		} else {
			throughputScore = clamp(v)
		}
		if v < triggerThroughput {
			recs = append(recs, fmt.Sprintf("Throughput at %.1f ops/sec: verify producers are healthy", v))
		}
	}

	overall := errorScore*weightError +
		perfScore*weightPerformance +
		cpuScore*weightCPU +
		memScore*weightMemory +
		storageScore*weightStorage +
		throughputScore*weightThroughput

	if len(recs) == 0 && overall >= 90 {
		recs = append(recs, "All components operating optimally")
	}

	return models.HealthScore{
		OverallScore: overall,
		Status:       statusFor(overall),
		ComponentScores: map[string]float64{
			"error":       errorScore,
			"performance": perfScore,
			"cpu":         cpuScore,
			"memory":      memScore,
			"storage":     storageScore,
			"throughput":  throughputScore,
		},
		Recommendations: recs,
	}
}

// usageScore maps a utilization percentage to a score: full marks up to
// 50% utilization, then linear down to 0 at 100%.
func usageScore(usage float64) float64 {
	if usage <= 50 {
		return 100
	}
	return clamp(100 - (usage-50)*2)
}

func statusFor(score float64) models.HealthStatus {
	switch {
	case score >= 90:
		return models.HealthExcellent
	case score >= 75:
		return models.HealthGood
	case score >= 60:
		return models.HealthFair
	case score >= 40:
		return models.HealthPoor
	default:
		return models.HealthCritical
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
