// Package collector implements the per-tenant metrics aggregate and the
// process-wide tenant registry. A Collector owns the metric-name to
// series mapping for one tenant plus that tenant's SLA definitions and
// alert dispatch; tenants share no mutable state with each other.
package collector

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/primevalai/onyx-metrics/internal/export"
	"github.com/primevalai/onyx-metrics/internal/health"
	"github.com/primevalai/onyx-metrics/internal/models"
	"github.com/primevalai/onyx-metrics/internal/sla"
	"github.com/primevalai/onyx-metrics/internal/timeseries"
)

// DefaultMaxLabels caps the label-set size accepted per point. The
// upstream behavior was unbounded; the cap bounds per-tenant memory.
const DefaultMaxLabels = 16

// DefaultAnomalyThreshold is the stddev multiplier used by the periodic
// anomaly sweep when the caller does not pass one.
const DefaultAnomalyThreshold = 2.0

// AlertHook receives alerts for SLA violations and newly detected
// anomalies. The engine only invokes it; delivery is external.
type AlertHook func(models.Alert)

// Options configure a Collector and every series it creates.
type Options struct {
	MaxPoints  int           // per-series point cap; 0 = timeseries default
	Retention  time.Duration // per-series retention window; 0 = timeseries default
	SLAWindow  time.Duration // SLA evaluation window; 0 = 1h
	MaxLabels  int           // label-set cap per point; 0 = DefaultMaxLabels
	AlertHook  AlertHook     // optional
	AlertRate  rate.Limit    // alert dispatch throttle per tenant; 0 = unthrottled
	AlertBurst int
	Logger     *slog.Logger // nil = slog.Default()
}

// Collector is the per-tenant aggregate: metric series, SLA definitions,
// and the alert dispatch state.
type Collector struct {
	tenantID  string
	maxPoints int
	retention time.Duration
	maxLabels int

	mu      sync.RWMutex
	metrics map[string]*timeseries.Series

	stateMu      sync.Mutex
	slaDefs      []models.SLADefinition
	slaCompliant map[string]bool      // last observed compliance per SLA name
	anomalyMark  map[string]time.Time // newest already-reported anomaly per metric

	evaluator *sla.Evaluator
	hook      AlertHook
	limiter   *rate.Limiter
	logger    *slog.Logger
	now       func() time.Time
}

// NewCollector creates the aggregate for one tenant.
func NewCollector(tenantID string, opts Options) *Collector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxLabels := opts.MaxLabels
	if maxLabels <= 0 {
		maxLabels = DefaultMaxLabels
	}
	var limiter *rate.Limiter
	if opts.AlertRate > 0 {
		burst := opts.AlertBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.AlertRate, burst)
	}
	return &Collector{
		tenantID:     tenantID,
		maxPoints:    opts.MaxPoints,
		retention:    opts.Retention,
		maxLabels:    maxLabels,
		metrics:      make(map[string]*timeseries.Series),
		slaCompliant: make(map[string]bool),
		anomalyMark:  make(map[string]time.Time),
		evaluator:    sla.NewEvaluator(opts.SLAWindow),
		hook:         opts.AlertHook,
		limiter:      limiter,
		logger:       logger.With("tenant_id", tenantID),
		now:          time.Now,
	}
}

// TenantID returns the owning tenant.
func (c *Collector) TenantID() string { return c.tenantID }

// RecordMetric validates and appends one measurement, creating the series
// on first use of the metric name.
func (c *Collector) RecordMetric(name string, value float64, labels map[string]string) error {
	return c.RecordMetricAt(name, value, c.now(), labels)
}

// RecordMetricAt is RecordMetric with an explicit timestamp.
func (c *Collector) RecordMetricAt(name string, value float64, ts time.Time, labels map[string]string) error {
	if err := c.validate(name, value, labels); err != nil {
		return err
	}
	c.series(name).RecordAt(value, ts, labels)
	return nil
}

// RecordBatch applies every entry via RecordMetric. There is no atomicity
// across metric names: valid entries land even when others are rejected,
// and all rejections are reported.
func (c *Collector) RecordBatch(samples []models.Sample) error {
	var errs []error
	for i, s := range samples {
		if err := c.RecordMetric(s.Name, s.Value, s.Labels); err != nil {
			errs = append(errs, fmt.Errorf("sample %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Collector) validate(name string, value float64, labels map[string]string) error {
	if name == "" {
		return &models.ValidationError{Field: "metric name", Reason: "must not be empty"}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &models.ValidationError{Field: "metric value", Reason: "must be a finite number"}
	}
	if len(labels) > c.maxLabels {
		return &models.ValidationError{
			Field:  "labels",
			Reason: fmt.Sprintf("at most %d labels per point, got %d", c.maxLabels, len(labels)),
		}
	}
	return nil
}

// series returns the TimeSeries for name, creating it lazily.
func (c *Collector) series(name string) *timeseries.Series {
	c.mu.RLock()
	s, ok := c.metrics[name]
	c.mu.RUnlock()
	if ok {
		return s
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.metrics[name]; ok {
		return s
	}
	s = timeseries.New(name, c.maxPoints, c.retention)
	c.metrics[name] = s
	c.logger.Debug("created series", "metric", name)
	return s
}

// lookup returns the series for name without creating it.
func (c *Collector) lookup(name string) (*timeseries.Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.metrics[name]
	return s, ok
}

// CurrentValue returns the latest recorded value for name. A metric that
// has never been recorded simply does not exist yet: the second return is
// false and no error is raised.
func (c *Collector) CurrentValue(name string) (float64, bool) {
	s, ok := c.lookup(name)
	if !ok {
		return 0, false
	}
	p, ok := s.Latest()
	if !ok {
		return 0, false
	}
	return p.Value, true
}

// Points returns the points for name within [start, end], both bounds
// inclusive. Zero times leave the corresponding bound open; an unknown
// metric yields an empty slice.
func (c *Collector) Points(name string, start, end time.Time) []models.MetricPoint {
	s, ok := c.lookup(name)
	if !ok {
		return nil
	}
	if start.IsZero() && end.IsZero() {
		return s.Snapshot()
	}
	if end.IsZero() {
		end = c.now()
	}
	return s.Range(start, end)
}

// MetricNames lists the metric names seen so far, in no particular order.
func (c *Collector) MetricNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.metrics))
	for name := range c.metrics {
		names = append(names, name)
	}
	return names
}

// DetectAnomalies runs the stddev-based detector over every series.
// Only metrics with at least one anomalous point appear in the result.
// Anomalies newer than the previous detection high-water mark for their
// metric are dispatched to the alert hook.
func (c *Collector) DetectAnomalies(k float64) map[string][]models.MetricPoint {
	if k <= 0 {
		k = DefaultAnomalyThreshold
	}
	result := make(map[string][]models.MetricPoint)
	for _, s := range c.allSeries() {
		anomalies := s.DetectAnomalies(k)
		if len(anomalies) == 0 {
			continue
		}
		result[s.Name()] = anomalies
		c.reportAnomalies(s.Name(), anomalies)
	}
	return result
}

func (c *Collector) reportAnomalies(metric string, anomalies []models.MetricPoint) {
	c.stateMu.Lock()
	mark := c.anomalyMark[metric]
	fresh := 0
	for _, p := range anomalies {
		if p.Timestamp.After(mark) {
			fresh++
			mark = p.Timestamp
		}
	}
	c.anomalyMark[metric] = mark
	c.stateMu.Unlock()

	if fresh > 0 {
		c.dispatch(models.AlertAnomaly, metric,
			fmt.Sprintf("%d new anomalous point(s) detected on %s", fresh, metric))
	}
}

// UsagePatterns classifies the recent trend of every metric.
func (c *Collector) UsagePatterns() map[string]models.Trend {
	patterns := make(map[string]models.Trend)
	for _, s := range c.allSeries() {
		patterns[s.Name()] = s.Trend()
	}
	return patterns
}

// CalculateHealthScore combines the tenant's current component metric
// values into the weighted composite score.
func (c *Collector) CalculateHealthScore() models.HealthScore {
	current := make(map[string]float64)
	for _, name := range []string{
		health.MetricErrorRate,
		health.MetricResponseTime,
		health.MetricCPUUsage,
		health.MetricMemoryUsage,
		health.MetricStorageUsage,
		health.MetricThroughput,
	} {
		if v, ok := c.CurrentValue(name); ok {
			current[name] = v
		}
	}
	return health.Score(current)
}

// Export serializes the collector's series in the requested format. The
// optional range restricts JSON and CSV output.
func (c *Collector) Export(format export.Format, r *export.Range) (string, error) {
	snapshot := make(map[string][]models.MetricPoint)
	for _, s := range c.allSeries() {
		snapshot[s.Name()] = s.Snapshot()
	}
	return export.Export(format, snapshot, r)
}

// allSeries copies the series references out under the read lock so the
// statistical passes run without holding it.
func (c *Collector) allSeries() []*timeseries.Series {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*timeseries.Series, 0, len(c.metrics))
	for _, s := range c.metrics {
		out = append(out, s)
	}
	return out
}

// dispatch hands an alert to the hook, subject to the per-tenant
// throttle. Suppressed alerts are logged, not silently dropped.
func (c *Collector) dispatch(kind models.AlertKind, metric, message string) {
	if c.hook == nil {
		return
	}
	if c.limiter != nil && !c.limiter.Allow() {
		c.logger.Warn("alert suppressed by throttle", "kind", kind, "metric", metric)
		return
	}
	c.hook(models.Alert{
		ID:         uuid.NewString(),
		TenantID:   c.tenantID,
		MetricName: metric,
		Kind:       kind,
		Message:    message,
		CreatedAt:  c.now(),
	})
}
