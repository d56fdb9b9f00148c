// Package models defines the canonical metrics domain model for the
// per-tenant analytics engine. Everything here is plain data; behavior
// lives in timeseries, sla, health and collector.
package models

import "time"

// MetricPoint is a single scalar measurement. Immutable once created;
// owned exclusively by the TimeSeries that stores it.
type MetricPoint struct {
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// NewMetricPoint builds a point with its own copy of the label map, so a
// caller mutating the original map cannot reach into stored state.
func NewMetricPoint(value float64, ts time.Time, labels map[string]string) MetricPoint {
	return MetricPoint{
		Value:     value,
		Timestamp: ts,
		Labels:    CopyLabels(labels),
	}
}

// CopyLabels returns a shallow copy of labels, or nil for an empty map.
func CopyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// Sample is one entry of a batch ingestion call.
type Sample struct {
	Name   string            `json:"name"`
	Value  float64           `json:"value"`
	Labels map[string]string `json:"labels,omitempty"`
}
