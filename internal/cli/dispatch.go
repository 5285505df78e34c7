package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/booking-scheduler/internal/dispatch"
	"github.com/example/booking-scheduler/internal/notify"
	"github.com/example/booking-scheduler/internal/persistence/sqlite"
)

func newDispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Run the reminder dispatcher until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := sqlite.Open(cfg.SQLiteDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pool.Migrate(ctx); err != nil {
				return err
			}

			store := newStoreAdapter(pool, time.Now)
			sink := notify.NewLogNotificationSink(logger)
			dispatcher := dispatch.New(store, sink, time.Now, logger)

			logger.Info("reminder dispatcher running", "interval", cfg.DispatchInterval)
			if err := dispatcher.Run(ctx, cfg.DispatchInterval); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
