package health

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primevalai/onyx-metrics/internal/models"
)

func TestScore_HealthySystemIsExcellent(t *testing.T) {
	score := Score(map[string]float64{
		MetricErrorRate:    0,
		MetricResponseTime: 50,
		MetricCPUUsage:     20,
		MetricMemoryUsage:  30,
		MetricStorageUsage: 40,
		MetricThroughput:   100,
	})

	assert.GreaterOrEqual(t, score.OverallScore, 90.0)
	assert.Equal(t, models.HealthExcellent, score.Status)
	require.Len(t, score.Recommendations, 1)
	assert.Contains(t, score.Recommendations[0], "operating optimally")
}

func TestScore_MissingComponentsScoreAsBest(t *testing.T) {
	score := Score(nil)
	assert.InDelta(t, 100.0, score.OverallScore, 1e-9)
	assert.Equal(t, models.HealthExcellent, score.Status)
	for component, v := range score.ComponentScores {
		assert.InDelta(t, 100.0, v, 1e-9, "component %s", component)
	}
}

func TestScore_RecommendationTriggers(t *testing.T) {
	score := Score(map[string]float64{
		MetricErrorRate:    0.20,
		MetricResponseTime: 2500,
		MetricCPUUsage:     95,
		MetricMemoryUsage:  92,
		MetricStorageUsage: 97,
		MetricThroughput:   2,
	})

	assert.Len(t, score.Recommendations, 6, "every trigger fires once")
	assert.Equal(t, models.HealthCritical, score.Status)
	joined := strings.Join(score.Recommendations, "\n")
	assert.NotContains(t, joined, "operating optimally")
}

func TestScore_StatusThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  models.HealthStatus
	}{
		{95, models.HealthExcellent},
		{90, models.HealthExcellent},
		{80, models.HealthGood},
		{75, models.HealthGood},
		{65, models.HealthFair},
		{60, models.HealthFair},
		{45, models.HealthPoor},
		{40, models.HealthPoor},
		{10, models.HealthCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.score), "score %.0f", tt.score)
	}
}

func TestScore_CPUComponentRecoversWithLoad(t *testing.T) {
	busy := Score(map[string]float64{MetricCPUUsage: 85})
	idle := Score(map[string]float64{MetricCPUUsage: 20})
	assert.Greater(t, idle.ComponentScores["cpu"], busy.ComponentScores["cpu"])
}

func TestScore_WeightsSumToOne(t *testing.T) {
	total := weightError + weightPerformance + weightCPU + weightMemory + weightStorage + weightThroughput
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestScore_MonotonicUsageScore(t *testing.T) {
	assert.Equal(t, 100.0, usageScore(0))
	assert.Equal(t, 100.0, usageScore(50))
	assert.Equal(t, 30.0, usageScore(85))
	assert.Equal(t, 0.0, usageScore(100))
}
