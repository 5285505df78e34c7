// Package cli wires the scheduler library into the schedctl operational
// command. No network transport lives here; the surrounding platform brings
// its own.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/booking-scheduler/internal/config"
	"github.com/example/booking-scheduler/internal/logging"
)

var configPath string

// NewRootCmd builds the schedctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedctl",
		Short: "Recurring booking scheduler toolkit",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newDispatchCmd())
	root.AddCommand(newSeriesCmd())
	root.AddCommand(newServiceCmd())

	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	// A local .env is optional; absence is not an error.
	_ = godotenv.Load()

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadRuntime() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.New(os.Stdout, parseLevel(cfg.LogLevel))
	return cfg, logger, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
