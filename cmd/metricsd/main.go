// metricsd runs the per-tenant metrics engine as a standalone process:
// samples arrive on stdin (one per line: "tenant metric value [k=v ...]"),
// SLA compliance and anomaly sweeps run on a timer, and alerts are logged
// and persisted. Transport layers embed the collector packages directly.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/primevalai/onyx-metrics/internal/collector"
	"github.com/primevalai/onyx-metrics/internal/config"
	"github.com/primevalai/onyx-metrics/internal/models"
	"github.com/primevalai/onyx-metrics/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("metricsd starting",
		"retention_minutes", cfg.RetentionMinutes,
		"max_points", cfg.DefaultMaxPoints,
		"sla_window_minutes", cfg.SLAWindowMinutes)

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if migrationSQL, err := os.ReadFile("migrations/001_initial_schema.sql"); err != nil {
		logger.Warn("could not read migration file", "error", err)
	} else if err := store.RunMigrations(string(migrationSQL)); err != nil {
		logger.Warn("failed to run migrations", "error", err)
	}

	registry := collector.NewRegistry(collector.Options{
		MaxPoints:  cfg.DefaultMaxPoints,
		Retention:  cfg.Retention(),
		SLAWindow:  cfg.SLAWindow(),
		MaxLabels:  cfg.MaxLabelsPerPoint,
		AlertHook:  alertHook(logger, store),
		AlertRate:  rate.Limit(cfg.AlertRatePerSec),
		AlertBurst: cfg.AlertRateBurst,
		Logger:     logger,
	})

	if err := replaySLADefinitions(context.Background(), store, registry); err != nil {
		logger.Warn("failed to replay sla definitions", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ingest(ctx, logger, registry)
		cancel() // stdin closed; wind the process down
	}()
	go func() {
		defer wg.Done()
		sweep(ctx, logger, registry, cfg)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "input closed")
	}
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Duration(cfg.ShutdownTimeoutSec) * time.Second):
		logger.Warn("shutdown timeout exceeded")
	}
	logger.Info("metricsd stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.DatabaseURL != "" {
		return repository.NewPostgresStore(cfg.DatabaseURL)
	}
	return repository.NewSQLiteStore(cfg.DatabasePath)
}

// alertHook logs every alert and persists it for operator audit.
func alertHook(logger *slog.Logger, store repository.Store) collector.AlertHook {
	return func(alert models.Alert) {
		logger.Warn("alert",
			"tenant_id", alert.TenantID,
			"metric", alert.MetricName,
			"kind", alert.Kind,
			"message", alert.Message)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.SaveAlert(ctx, alert); err != nil {
			logger.Error("failed to persist alert", "error", err)
		}
	}
}

// replaySLADefinitions restores persisted definitions into freshly
// registered collectors at startup.
func replaySLADefinitions(ctx context.Context, store repository.Store, registry *collector.Registry) error {
	tenants, err := store.ListTenants(ctx)
	if err != nil {
		return err
	}
	for _, tenantID := range tenants {
		defs, err := store.ListSLADefinitions(ctx, tenantID)
		if err != nil {
			return err
		}
		c := registry.Register(tenantID)
		for _, def := range defs {
			if err := c.AddSLADefinition(def); err != nil {
				return fmt.Errorf("tenant %s sla %s: %w", tenantID, def.Name, err)
			}
		}
	}
	return nil
}

// ingest reads samples from stdin until EOF. Tenants are registered on
// first sight; malformed lines are rejected and logged, never dropped
// silently.
func ingest(ctx context.Context, logger *slog.Logger, registry *collector.Registry) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tenantID, name, value, labels, err := parseSample(line)
		if err != nil {
			logger.Error("rejected sample", "line", line, "error", err)
			continue
		}
		c := registry.Register(tenantID)
		if err := c.RecordMetric(name, value, labels); err != nil {
			logger.Error("rejected sample", "line", line, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("stdin read failed", "error", err)
	}
}

// parseSample parses "tenant metric value [k=v ...]".
func parseSample(line string) (tenantID, name string, value float64, labels map[string]string, err error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", "", 0, nil, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}
	tenantID, name = fields[0], fields[1]
	value, err = strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return "", "", 0, nil, fmt.Errorf("bad value %q: %w", fields[2], err)
	}
	for _, f := range fields[3:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return "", "", 0, nil, fmt.Errorf("bad label %q", f)
		}
		if labels == nil {
			labels = make(map[string]string)
		}
		labels[k] = v
	}
	return tenantID, name, value, labels, nil
}

// sweep periodically evaluates SLA compliance and runs anomaly detection
// for every tenant. Alerts fire through the collector's hook.
func sweep(ctx context.Context, logger *slog.Logger, registry *collector.Registry, cfg *config.Config) {
	ticker := time.NewTicker(cfg.SweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for _, tenantID := range registry.Tenants() {
			c, ok := registry.Get(tenantID)
			if !ok {
				continue
			}
			for _, result := range c.CheckSLACompliance() {
				logger.Debug("sla checked",
					"tenant_id", tenantID,
					"sla", result.SLAName,
					"no_data", result.NoData,
					"compliance", result.CompliancePercentage,
					"compliant", result.IsCompliant)
			}
			anomalies := c.DetectAnomalies(cfg.AnomalyThreshold)
			for metric, points := range anomalies {
				logger.Debug("anomalies detected",
					"tenant_id", tenantID, "metric", metric, "count", len(points))
			}
		}
	}
}
