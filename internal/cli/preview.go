package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/booking-scheduler/internal/recurrence"
)

func newPreviewCmd() *cobra.Command {
	var (
		startFlag    string
		timeFlag     string
		daysFlag     string
		intervalFlag int
		countFlag    int
		untilFlag    string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Expand a recurrence rule without touching storage",
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

			rule := recurrence.Rule{
				Start:         start,
				TimeOfDay:     timeOfDay,
				Weekdays:      weekdays,
				IntervalWeeks: intervalFlag,
				Count:         countFlag,
			}
			if untilFlag != "" {
				until, err := parseDate(untilFlag)
				if err != nil {
					return fmt.Errorf("invalid --until: %w", err)
				}
				rule.Until = &until
			}

			occurrences, err := recurrence.Expand(rule)
			if err != nil {
				return err
			}
			for i, occurrence := range occurrences {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s  %s\n", i+1, occurrence.Weekday(), occurrence.Format(time.RFC3339))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", len(occurrences))
			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "series start date, RFC3339 or YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&timeFlag, "time", "09:00", "time of day for every occurrence, HH:MM")
	cmd.Flags().StringVar(&daysFlag, "days", "", "comma separated weekdays, 0=Sunday..6=Saturday (required)")
	cmd.Flags().IntVar(&intervalFlag, "interval", 1, "week interval between blocks")
	cmd.Flags().IntVar(&countFlag, "count", 0, "occurrence cap; 0 leaves only the hard cap")
	cmd.Flags().StringVar(&untilFlag, "until", "", "inclusive end bound, RFC3339 or YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func parseWeekdays(value string) ([]time.Weekday, error) {
	parts := strings.Split(value, ",")
	weekdays := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		weekdays = append(weekdays, time.Weekday(n))
	}
	return weekdays, nil
}
