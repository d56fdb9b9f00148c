package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/primevalai/onyx-metrics/internal/models"
)

// PostgresStore implements Store on PostgreSQL for deployments that
// already run one next to the platform.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects with the given DSN.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RunMigrations runs database migrations.
func (s *PostgresStore) RunMigrations(migrationSQL string) error {
	_, err := s.db.Exec(migrationSQL)
	return err
}

func (s *PostgresStore) SaveSLADefinition(ctx context.Context, tenantID string, def models.SLADefinition) error {
	query := `
		INSERT INTO sla_definitions (tenant_id, name, metric_name, threshold, target_percentage)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query,
		tenantID, def.Name, def.MetricName, def.Threshold, def.TargetPercentage); err != nil {
		return fmt.Errorf("failed to save sla definition: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSLADefinitions(ctx context.Context, tenantID string) ([]models.SLADefinition, error) {
	query := `
		SELECT name, metric_name, threshold, target_percentage
		FROM sla_definitions WHERE tenant_id = $1 ORDER BY name
	`
	rows, err := s.db.QueryxContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sla definitions: %w", err)
	}
	defer rows.Close()

	var defs []models.SLADefinition
	for rows.Next() {
		var def models.SLADefinition
		if err := rows.Scan(&def.Name, &def.MetricName, &def.Threshold, &def.TargetPercentage); err != nil {
			return nil, fmt.Errorf("failed to scan sla definition: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (s *PostgresStore) DeleteSLADefinition(ctx context.Context, tenantID, name string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sla_definitions WHERE tenant_id = $1 AND name = $2`, tenantID, name)
	if err != nil {
		return fmt.Errorf("failed to delete sla definition: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT tenant_id FROM sla_definitions ORDER BY tenant_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tenant id: %w", err)
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}

func (s *PostgresStore) SaveAlert(ctx context.Context, alert models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	query := `
		INSERT INTO alerts (id, tenant_id, metric_name, kind, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.ExecContext(ctx, query,
		alert.ID, alert.TenantID, alert.MetricName, string(alert.Kind), alert.Message, alert.CreatedAt); err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAlerts(ctx context.Context, tenantID string, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, tenant_id, metric_name, kind, message, created_at
		FROM alerts WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2
	`
	rows, err := s.db.QueryxContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var kind string
		if err := rows.Scan(&a.ID, &a.TenantID, &a.MetricName, &kind, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Kind = models.AlertKind(kind)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
