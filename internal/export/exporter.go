// Package export serializes metric snapshots to interchange formats.
// Field names and ordering are a stable wire contract for external
// scraping tools; do not change them without a version bump.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/primevalai/onyx-metrics/internal/models"
)

// Format identifies an export encoding.
type Format string

const (
	FormatJSON       Format = "json"
	FormatCSV        Format = "csv"
	FormatPrometheus Format = "prometheus"
)

// Range restricts JSON and CSV exports to points within [Start, End],
// both inclusive. A nil range exports everything retained.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r *Range) contains(ts time.Time) bool {
	if r == nil {
		return true
	}
	return !ts.Before(r.Start) && !ts.After(r.End)
}

// Export renders the snapshot in the requested format. Unknown formats
// return *models.UnsupportedFormatError.
func Export(format Format, series map[string][]models.MetricPoint, r *Range) (string, error) {
	switch format {
	case FormatJSON:
		return exportJSON(series, r)
	case FormatCSV:
		return exportCSV(series, r)
	case FormatPrometheus:
		return exportPrometheus(series), nil
	default:
		return "", &models.UnsupportedFormatError{Format: string(format)}
	}
}

type jsonPoint struct {
	Timestamp time.Time         `json:"timestamp"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
}

func exportJSON(series map[string][]models.MetricPoint, r *Range) (string, error) {
	out := make(map[string][]jsonPoint, len(series))
	for name, points := range series {
		arr := make([]jsonPoint, 0, len(points))
		for _, p := range points {
			if !r.contains(p.Timestamp) {
				continue
			}
			arr = append(arr, jsonPoint{Timestamp: p.Timestamp, Value: p.Value, Labels: p.Labels})
		}
		out[name] = arr
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return string(data), nil
}

func exportCSV(series map[string][]models.MetricPoint, r *Range) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"metric_name", "timestamp", "value", "labels"}); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, name := range sortedNames(series) {
		for _, p := range series[name] {
			if !r.contains(p.Timestamp) {
				continue
			}
			row := []string{
				name,
				p.Timestamp.Format(time.RFC3339Nano),
				strconv.FormatFloat(p.Value, 'g', -1, 64),
				formatLabels(p.Labels),
			}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV export: %w", err)
	}
	return buf.String(), nil
}

// exportPrometheus emits one exposition line per metric for its latest
// point only. Metric names are normalized so hyphens, spaces and other
// disallowed characters become underscores.
func exportPrometheus(series map[string][]models.MetricPoint) string {
	var b strings.Builder
	for _, name := range sortedNames(series) {
		points := series[name]
		if len(points) == 0 {
			continue
		}
		latest := points[len(points)-1]
		b.WriteString(normalizeMetricName(name))
		if len(latest.Labels) > 0 {
			b.WriteByte('{')
			keys := make([]string, 0, len(latest.Labels))
			for k := range latest.Labels {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for i, k := range keys {
				if i > 0 {
					b.WriteByte(',')
				}
				fmt.Fprintf(&b, "%s=%q", normalizeMetricName(k), latest.Labels[k])
			}
			b.WriteByte('}')
		}
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(latest.Value, 'g', -1, 64))
		b.WriteByte('\n')
	}
	return b.String()
}

func normalizeMetricName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == ':':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// formatLabels renders labels as sorted k=v pairs joined by semicolons,
// or an empty string for an unlabelled point.
func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ";")
}

func sortedNames(series map[string][]models.MetricPoint) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
