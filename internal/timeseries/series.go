// Package timeseries implements the bounded, retention-governed storage
// for one metric name together with all point-level statistics. A series
// guards its points with its own mutex; read paths copy the points out
// under the lock and compute over the copy, so expensive statistical
// passes never block the writer.
package timeseries

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/primevalai/onyx-metrics/internal/models"
)

const (
	// DefaultMaxPoints bounds a series when the caller passes no limit.
	DefaultMaxPoints = 1000
	// DefaultRetention bounds point age when the caller passes no window.
	DefaultRetention = 24 * time.Hour
)

// Series is a timestamp-ascending sequence of MetricPoint for a single
// metric name. At all times len(points) <= maxPoints and every point is
// within retention of "now" as of the last mutation.
type Series struct {
	name      string
	maxPoints int
	retention time.Duration

	mu     sync.Mutex
	points []models.MetricPoint

	now func() time.Time // injectable for tests
}

// New creates an empty series. Non-positive maxPoints or retention fall
// back to the package defaults.
func New(name string, maxPoints int, retention time.Duration) *Series {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Series{
		name:      name,
		maxPoints: maxPoints,
		retention: retention,
		now:       time.Now,
	}
}

// Name returns the metric name the series stores.
func (s *Series) Name() string { return s.name }

// Record appends a point stamped with the current time.
func (s *Series) Record(value float64, labels map[string]string) {
	s.RecordAt(value, s.now(), labels)
}

// RecordAt appends a point with an explicit timestamp. Points older than
// the retention window are evicted from the front first; if the series is
// full after that, the oldest point is dropped (FIFO).
func (s *Series) RecordAt(value float64, ts time.Time, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.retention)
	idx := 0
	for idx < len(s.points) && s.points[idx].Timestamp.Before(cutoff) {
		idx++
	}
	s.points = s.points[idx:]

	if len(s.points) >= s.maxPoints {
		s.points = s.points[len(s.points)-s.maxPoints+1:]
	}

	p := models.NewMetricPoint(value, ts, labels)
	n := len(s.points)
	if n == 0 || !ts.Before(s.points[n-1].Timestamp) {
		s.points = append(s.points, p)
		return
	}
	// Out-of-order timestamp: insert to keep the sequence ascending.
	at := sort.Search(n, func(i int) bool { return s.points[i].Timestamp.After(ts) })
	s.points = append(s.points, models.MetricPoint{})
	copy(s.points[at+1:], s.points[at:])
	s.points[at] = p
}

// Snapshot copies the current points out under the lock.
func (s *Series) Snapshot() []models.MetricPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MetricPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Len reports how many points are currently retained.
func (s *Series) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points)
}

// Latest returns the most recent point, or false if the series is empty.
func (s *Series) Latest() (models.MetricPoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.points) == 0 {
		return models.MetricPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Average returns the arithmetic mean of the points within window
// (0 = all retained points), or 0 when no point qualifies.
func (s *Series) Average(window time.Duration) float64 {
	values := s.windowValues(window)
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Percentile returns the nearest-rank percentile p (0-100) of the points
// within window: values are sorted ascending and indexed at
// floor((n-1)*p/100), without interpolation. Returns 0 when no point
// qualifies. The indexing rule is a wire-level contract with other
// implementations and must not be changed.
func (s *Series) Percentile(p float64, window time.Duration) float64 {
	values := s.windowValues(window)
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	idx := int(math.Floor(float64(len(values)-1) * p / 100.0))
	if idx < 0 {
		idx = 0
	}
	if idx > len(values)-1 {
		idx = len(values) - 1
	}
	return values[idx]
}

// Range returns the points with start <= timestamp <= end, both bounds
// inclusive.
func (s *Series) Range(start, end time.Time) []models.MetricPoint {
	snapshot := s.Snapshot()
	out := make([]models.MetricPoint, 0, len(snapshot))
	for _, p := range snapshot {
		if p.Timestamp.Before(start) || p.Timestamp.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// windowValues extracts the values of the points within window
// (0 = everything retained).
func (s *Series) windowValues(window time.Duration) []float64 {
	snapshot := s.Snapshot()
	var cutoff time.Time
	if window > 0 {
		cutoff = s.now().Add(-window)
	}
	values := make([]float64, 0, len(snapshot))
	for _, p := range snapshot {
		if window > 0 && p.Timestamp.Before(cutoff) {
			continue
		}
		values = append(values, p.Value)
	}
	return values
}
