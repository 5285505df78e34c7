package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/booking-scheduler/internal/application"
	"github.com/example/booking-scheduler/internal/notify"
	"github.com/example/booking-scheduler/internal/persistence/sqlite"
	"github.com/example/booking-scheduler/internal/recurrence"
)

func newSeriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Create, inspect, and cancel recurring booking series",
	}
	cmd.AddCommand(newSeriesCreateCmd())
	cmd.AddCommand(newSeriesShowCmd())
	cmd.AddCommand(newSeriesCancelCmd())
	return cmd
}

func withSeriesService(cmd *cobra.Command, fn func(*application.SeriesService) error) error {
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

	store := newStoreAdapter(pool, time.Now)
	service := application.NewSeriesServiceWithLogger(
		store,
		notify.NewLogNotificationSink(logger),
		notify.NewLogCalendarSyncSink(logger),
		uuid.NewString,
		time.Now,
		logger,
	)
	return fn(service)
}

func newSeriesCreateCmd() *cobra.Command {
	var (
		businessFlag string
		customerFlag string
		serviceFlag  string
		staffFlag    string
		startFlag    string
		timeFlag     string
		daysFlag     string
		intervalFlag int
		countFlag    int
		untilFlag    string
		notesFlag    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a recurring series with its bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(startFlag)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			timeOfDay, err := recurrence.ParseTimeOfDay(timeFlag)
			if err != nil {
				return fmt.Errorf("invalid --time: %w", err)
			}
			weekdays, err := parseWeekdays(daysFlag)
			if err != nil {
				return fmt.Errorf("invalid --days: %w", err)
			}

			input := application.SeriesInput{
				CustomerID:    customerFlag,
				ServiceID:     serviceFlag,
				StartDate:     start,
				TimeOfDay:     timeOfDay,
				Weekdays:      weekdays,
				IntervalWeeks: intervalFlag,
				TotalCount:    countFlag,
			}
			if staffFlag != "" {
				input.StaffID = &staffFlag
			}
			if untilFlag != "" {
				until, err := parseDate(untilFlag)
				if err != nil {
					return fmt.Errorf("invalid --until: %w", err)
				}
				input.EndsAt = &until
			}
			if notesFlag != "" {
				input.Notes = &notesFlag
			}

			return withSeriesService(cmd, func(service *application.SeriesService) error {
				series, err := service.CreateSeries(cmd.Context(), application.CreateSeriesParams{
					BusinessID: businessFlag,
					Input:      input,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "series %s created with %d bookings\n", series.ID, series.TotalCount)
				printBookings(cmd, series.Bookings)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&businessFlag, "business", "", "business id (required)")
	cmd.Flags().StringVar(&customerFlag, "customer", "", "customer id (required)")
	cmd.Flags().StringVar(&serviceFlag, "service", "", "service id (required)")
	cmd.Flags().StringVar(&staffFlag, "staff", "", "staff id; empty books without staff assignment")
	cmd.Flags().StringVar(&startFlag, "start", "", "series start date, RFC3339 or YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&timeFlag, "time", "09:00", "time of day for every occurrence, HH:MM")
	cmd.Flags().StringVar(&daysFlag, "days", "", "comma separated weekdays, 0=Sunday..6=Saturday (required)")
	cmd.Flags().IntVar(&intervalFlag, "interval", 1, "week interval between blocks")
	cmd.Flags().IntVar(&countFlag, "count", 0, "requested occurrence count; 0 leaves only the hard cap")
	cmd.Flags().StringVar(&untilFlag, "until", "", "inclusive end bound, RFC3339 or YYYY-MM-DD")
	cmd.Flags().StringVar(&notesFlag, "notes", "", "free-form notes stored on the series")
	_ = cmd.MarkFlagRequired("business")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}

func newSeriesShowCmd() *cobra.Command {
	var businessFlag string

	cmd := &cobra.Command{
		Use:   "show <series-id>",
		Short: "Show a series and its bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSeriesService(cmd, func(service *application.SeriesService) error {
				series, err := service.GetSeries(cmd.Context(), businessFlag, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "series %s  customer=%s  service=%s  bookings=%d\n",
					series.ID, series.CustomerID, series.ServiceID, series.TotalCount)
				printBookings(cmd, series.Bookings)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&businessFlag, "business", "", "business id (required)")
	_ = cmd.MarkFlagRequired("business")
	return cmd
}

func newSeriesCancelCmd() *cobra.Command {
	var (
		businessFlag string
		scopeFlag    string
		bookingFlag  string
	)

	cmd := &cobra.Command{
		Use:   "cancel <series-id>",
		Short: "Cancel a series in full or in part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var scope application.CancelScope
			switch scopeFlag {
			case "single":
				scope = application.ScopeSingle{BookingID: bookingFlag}
			case "future":
				scope = application.ScopeFuture{BookingID: bookingFlag}
			case "all":
				scope = application.ScopeAll{}
			default:
				return fmt.Errorf("unknown --scope %q (expected single, future, or all)", scopeFlag)
			}

			return withSeriesService(cmd, func(service *application.SeriesService) error {
				cancelled, err := service.CancelSeries(cmd.Context(), businessFlag, args[0], scope)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cancelled %d bookings\n", cancelled)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&businessFlag, "business", "", "business id (required)")
	cmd.Flags().StringVar(&scopeFlag, "scope", "all", "cancellation scope: single, future, or all")
	cmd.Flags().StringVar(&bookingFlag, "booking", "", "reference booking id for single/future scopes")
	_ = cmd.MarkFlagRequired("business")
	return cmd
}

func printBookings(cmd *cobra.Command, bookings []application.Booking) {
	for _, b := range bookings {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s -> %s  %s\n",
			b.ID, b.Start.Format(time.RFC3339), b.End.Format(time.RFC3339), b.Status)
	}
}
