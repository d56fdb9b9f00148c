// Package repository persists the operator-facing durable state of the
// engine: SLA definitions and dispatched alerts. Metric points themselves
// are memory-only and never stored here.
package repository

import (
	"context"

	"github.com/primevalai/onyx-metrics/internal/models"
)

// Store is the persistence contract shared by the SQLite and Postgres
// backends.
type Store interface {
	SaveSLADefinition(ctx context.Context, tenantID string, def models.SLADefinition) error
	ListSLADefinitions(ctx context.Context, tenantID string) ([]models.SLADefinition, error)
	DeleteSLADefinition(ctx context.Context, tenantID, name string) error
	ListTenants(ctx context.Context) ([]string, error)

	SaveAlert(ctx context.Context, alert models.Alert) error
	ListAlerts(ctx context.Context, tenantID string, limit int) ([]models.Alert, error)

	RunMigrations(migrationSQL string) error
	Close() error
}
