package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/booking-scheduler/internal/persistence"
	"github.com/example/booking-scheduler/internal/persistence/sqlite"
)

func newServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the service catalog entries the scheduler reads",
	}
	cmd.AddCommand(newServiceAddCmd())
	return cmd
}

func newServiceAddCmd() *cobra.Command {
	var (
		businessFlag string
		nameFlag     string
		durationFlag int
		priceFlag    int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a service catalog entry",
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

			service := persistence.Service{
				ID:           uuid.NewString(),
				BusinessID:   businessFlag,
				Name:         nameFlag,
				DurationMins: durationFlag,
				PriceCents:   priceFlag,
			}
			if err := sqlite.NewServiceRepository(pool).CreateService(cmd.Context(), service); err != nil {
				return err
			}

			logger.Info("service created", "service_id", service.ID, "business_id", businessFlag)
			fmt.Fprintf(cmd.OutOrStdout(), "service %s created\n", service.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&businessFlag, "business", "", "business id (required)")
	cmd.Flags().StringVar(&nameFlag, "name", "", "service name (required)")
	cmd.Flags().IntVar(&durationFlag, "duration", 60, "service duration in minutes")
	cmd.Flags().IntVar(&priceFlag, "price", 0, "service price in cents")
	_ = cmd.MarkFlagRequired("business")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
