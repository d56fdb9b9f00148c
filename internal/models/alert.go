package models

import "time"

// AlertKind says why an alert fired.
type AlertKind string

const (
	AlertSLAViolation AlertKind = "sla_violation"
	AlertAnomaly      AlertKind = "anomaly"
)

// Alert is the payload handed to the alert hook when an SLA becomes
// non-compliant or an anomaly is newly detected. The engine only invokes
// the hook; delivery is the notification system's problem.
type Alert struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	MetricName string    `json:"metric_name"`
	Kind       AlertKind `json:"kind"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
