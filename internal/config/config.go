// Package config loads the engine configuration from config.yaml and
// METRICSD_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabasePath string `mapstructure:"database_path"` // SQLite file; ignored when database_url is set
	DatabaseURL  string `mapstructure:"database_url"`  // Postgres DSN; empty = use SQLite
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"` // "json" or "text"

	DefaultMaxPoints  int     `mapstructure:"default_max_points"` // per-series point cap
	RetentionMinutes  int     `mapstructure:"retention_minutes"`  // per-series retention window
	SLAWindowMinutes  int     `mapstructure:"sla_window_minutes"` // SLA evaluation window
	AnomalyThreshold  float64 `mapstructure:"anomaly_threshold"`  // stddev multiplier for sweeps
	MaxLabelsPerPoint int     `mapstructure:"max_labels_per_point"`

	SweepIntervalSec   int     `mapstructure:"sweep_interval_sec"` // SLA/anomaly sweep period
	AlertRatePerSec    float64 `mapstructure:"alert_rate_per_sec"` // per-tenant alert throttle; 0 = unthrottled
	AlertRateBurst     int     `mapstructure:"alert_rate_burst"`
	ShutdownTimeoutSec int     `mapstructure:"shutdown_timeout_sec"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/metricsd/")
	viper.AddConfigPath("$HOME/.metricsd")
	viper.AddConfigPath(".")

	// Defaults
	viper.SetDefault("database_path", "./metricsd.db")
	viper.SetDefault("database_url", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("default_max_points", 1000)
	viper.SetDefault("retention_minutes", 24*60)
	viper.SetDefault("sla_window_minutes", 60)
	viper.SetDefault("anomaly_threshold", 2.0)
	viper.SetDefault("max_labels_per_point", 16)
	viper.SetDefault("sweep_interval_sec", 60)
	viper.SetDefault("alert_rate_per_sec", 0)
	viper.SetDefault("alert_rate_burst", 0)
	viper.SetDefault("shutdown_timeout_sec", 15)

	// Environment variables
	viper.SetEnvPrefix("METRICSD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; defaults + env apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Retention returns the retention window as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// SLAWindow returns the SLA evaluation window as a duration.
func (c *Config) SLAWindow() time.Duration {
	return time.Duration(c.SLAWindowMinutes) * time.Minute
}

// SweepInterval returns the SLA/anomaly sweep period as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}
