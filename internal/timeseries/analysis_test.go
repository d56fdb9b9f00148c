package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primevalai/onyx-metrics/internal/models"
)

func seed(t *testing.T, values []float64) *Series {
	t.Helper()
	s := New("test", 100, time.Hour)
	base := time.Now()
	for i, v := range values {
		s.RecordAt(v, base.Add(time.Duration(i)*time.Second), nil)
	}
	return s
}

func TestDetectAnomalies_BelowMinimumPopulation(t *testing.T) {
	s := seed(t, []float64{1, 1, 1, 1, 1000})
	assert.Empty(t, s.DetectAnomalies(2.0),
		"fewer than 10 points is no baseline at all")
}

func TestDetectAnomalies_FlagsExactlyTheOutlier(t *testing.T) {
	values := make([]float64, 0, 20)
	for i := 0; i < 19; i++ {
		values = append(values, 10)
	}
	values = append(values, 1000)
	s := seed(t, values)

	anomalies := s.DetectAnomalies(2.0)
	require.Len(t, anomalies, 1)
	assert.Equal(t, 1000.0, anomalies[0].Value)
}

func TestDetectAnomalies_ConstantSeries(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = 7
	}
	s := seed(t, values)
	assert.Empty(t, s.DetectAnomalies(2.0))
}

func TestTrend_FewerThanFivePointsIsStable(t *testing.T) {
	s := seed(t, []float64{1, 100, 1})
	assert.Equal(t, models.TrendStable, s.Trend())
}

func TestTrend_Growing(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i)
	}
	s := seed(t, values)
	assert.Equal(t, models.TrendGrowing, s.Trend())
}

func TestTrend_Declining(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(-i)
	}
	s := seed(t, values)
	assert.Equal(t, models.TrendDeclining, s.Trend())
}

func TestTrend_ConstantIsStable(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 42
	}
	s := seed(t, values)
	assert.Equal(t, models.TrendStable, s.Trend())
}

func TestTrend_NoisySeriesIsVolatile(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		if i%2 == 0 {
			values[i] = 0
		} else {
			values[i] = 100
		}
	}
	s := seed(t, values)
	assert.Equal(t, models.TrendVolatile, s.Trend())
}

func TestTrend_UsesOnlyTheTrailingWindow(t *testing.T) {
	// 30 declining points followed by 20 growing ones: only the trailing
	// 20 should matter.
	values := make([]float64, 0, 50)
	for i := 0; i < 30; i++ {
		values = append(values, float64(100-i))
	}
	for i := 0; i < 20; i++ {
		values = append(values, float64(i*2))
	}
	s := seed(t, values)
	assert.Equal(t, models.TrendGrowing, s.Trend())
}
