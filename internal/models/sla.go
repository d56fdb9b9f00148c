package models

import (
	"math"
	"time"
)

// SLADefinition is a named compliance target for keeping a metric at or
// under a threshold over an evaluation window. Immutable once added to a
// collector; an update is a remove followed by a re-add.
type SLADefinition struct {
	Name             string  `json:"name"`
	MetricName       string  `json:"metric_name"`
	Threshold        float64 `json:"threshold"`
	TargetPercentage float64 `json:"target_percentage"` // [0,100]
}

// Validate checks the definition before it is accepted.
func (d *SLADefinition) Validate() error {
	if d.Name == "" {
		return &ValidationError{Field: "sla name", Reason: "must not be empty"}
	}
	if d.MetricName == "" {
		return &ValidationError{Field: "sla metric_name", Reason: "must not be empty"}
	}
	if math.IsNaN(d.Threshold) || math.IsInf(d.Threshold, 0) {
		return &ValidationError{Field: "sla threshold", Reason: "must be a finite number"}
	}
	if d.TargetPercentage < 0 || d.TargetPercentage > 100 {
		return &ValidationError{Field: "sla target_percentage", Reason: "must be within [0,100]"}
	}
	return nil
}

// SLAComplianceResult is the outcome of evaluating one SLADefinition over
// its window. NoData distinguishes an empty window from both 0% and 100%
// compliance.
type SLAComplianceResult struct {
	SLAName              string    `json:"sla_name"`
	WindowStart          time.Time `json:"window_start"`
	WindowEnd            time.Time `json:"window_end"`
	CompliancePercentage float64   `json:"compliance_percentage"`
	NoData               bool      `json:"no_data,omitempty"`
	ViolationsCount      int       `json:"violations_count"`
	TotalMeasurements    int       `json:"total_measurements"`
	IsCompliant          bool      `json:"is_compliant"`
}
