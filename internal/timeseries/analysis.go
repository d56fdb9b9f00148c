package timeseries

import (
	"math"

	"github.com/primevalai/onyx-metrics/internal/models"
)

// minAnomalyPoints is the smallest population worth flagging against;
// below this the baseline is too noisy to call anything an outlier.
const minAnomalyPoints = 10

// trendWindow is how many trailing points the trend fit considers.
const trendWindow = 20

// minTrendPoints is the floor below which the trend is reported stable.
const minTrendPoints = 5

// DetectAnomalies returns the retained points whose values deviate from
// the population mean by more than k standard deviations. Fewer than
// minAnomalyPoints retained points yields no anomalies. The baseline uses
// the population (not sample) standard deviation; that choice is shared
// with other implementations and must be kept.
func (s *Series) DetectAnomalies(k float64) []models.MetricPoint {
	snapshot := s.Snapshot()
	if len(snapshot) < minAnomalyPoints {
		return nil
	}

	mean := 0.0
	for _, p := range snapshot {
		mean += p.Value
	}
	mean /= float64(len(snapshot))

	variance := 0.0
	for _, p := range snapshot {
		d := p.Value - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(snapshot)))

	var anomalies []models.MetricPoint
	for _, p := range snapshot {
		if math.Abs(p.Value-mean) > k*stddev {
			anomalies = append(anomalies, p)
		}
	}
	return anomalies
}

// Trend classifies the direction of the last trendWindow points with an
// ordinary least-squares fit against the point index. A fit with R² below
// 0.5 is volatile; otherwise a slope above 0.1 per point is growing,
// below -0.1 declining, and anything in between stable. Fewer than
// minTrendPoints points is always stable.
func (s *Series) Trend() models.Trend {
	snapshot := s.Snapshot()
	if len(snapshot) < minTrendPoints {
		return models.TrendStable
	}
	if len(snapshot) > trendWindow {
		snapshot = snapshot[len(snapshot)-trendWindow:]
	}

	n := float64(len(snapshot))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range snapshot {
		x := float64(i)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return models.TrendStable
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i, p := range snapshot {
		fit := intercept + slope*float64(i)
		ssRes += (p.Value - fit) * (p.Value - fit)
		ssTot += (p.Value - meanY) * (p.Value - meanY)
	}
	if ssTot == 0 {
		// Constant series fits perfectly with slope 0.
		return models.TrendStable
	}
	r2 := 1 - ssRes/ssTot

	switch {
	case r2 < 0.5:
		return models.TrendVolatile
	case slope > 0.1:
		return models.TrendGrowing
	case slope < -0.1:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}
