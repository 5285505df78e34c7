package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/booking-scheduler/internal/persistence/sqlite"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the booking database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}

			pool, err := sqlite.Open(cfg.SQLiteDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pool.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("schema applied", "dsn", cfg.SQLiteDSN)
			return nil
		},
	}
}
