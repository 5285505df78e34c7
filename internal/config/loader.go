package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures configuration values for the booking scheduler.
type Config struct {
	// SQLiteDSN locates the booking database.
	SQLiteDSN string `yaml:"sqlite_dsn"`
	// DispatchInterval is the period of the reminder dispatcher sweep.
	DispatchInterval time.Duration `yaml:"dispatch_interval"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		SQLiteDSN:        "file:bookings.db?_foreign_keys=on",
		DispatchInterval: time.Minute,
		LogLevel:         "info",
	}
}

// Load resolves configuration from an optional YAML file layered under
// process environment variables. path may be empty; a missing file at a
// caller-supplied path is an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_DISPATCH_INTERVAL")); value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "BOOKING_DISPATCH_INTERVAL")
		} else {
			cfg.DispatchInterval = interval
		}
	}

	if level := strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "BOOKING_LOG_LEVEL")
	}
	if cfg.DispatchInterval <= 0 {
		invalid = append(invalid, "dispatch_interval")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
