package models

// HealthStatus buckets an overall score into an operator-facing label.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
	HealthCritical  HealthStatus = "critical"
)

// HealthScore is a weighted 0-100 composite over a tenant's current
// component metric values. Derived on demand, never stored.
type HealthScore struct {
	OverallScore    float64            `json:"overall_score"`
	Status          HealthStatus       `json:"status"`
	ComponentScores map[string]float64 `json:"component_scores"`
	Recommendations []string           `json:"recommendations"`
}

// Trend classifies the recent direction of a time series.
type Trend string

const (
	TrendStable    Trend = "stable"
	TrendGrowing   Trend = "growing"
	TrendDeclining Trend = "declining"
	TrendVolatile  Trend = "volatile"
)
