package root

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"eduquest/internal/engine"
	"eduquest/internal/ui"
)

const dateLayout = "2006-01-02"

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show study blocks and quest due dates for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			month := time.Now()
			if len(args) == 1 {
				m, err := time.ParseInLocation("2006-01", args[0], time.Local)
				if err != nil {
					return fmt.Errorf("month must look like 2026-03")
				}
				month = m
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCal, month.Format("January 2006")))
			events := svc.CalendarMonth(month.Year(), month.Month())
			if len(events) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Nothing scheduled."))
			}
			for _, e := range events {
				fmt.Fprintf(out, "%s %s %s %s\n", ui.Key.Render(e.Date.Local().Format("Mon 02")), ui.QuestIcon(string(e.Type)), e.Title, ui.Muted.Render(e.ID))
			}
			return nil
		},
	}
	cmd.AddCommand(newCalendarAddCmd(), newCalendarRmCmd())
	return cmd
}

func newCalendarAddCmd() *cobra.Command {
	var (
		date   string
		repeat string
		count  int
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Schedule a study block",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := time.ParseInLocation(dateLayout, date, time.Local)
			if err != nil {
				return fmt.Errorf("date must look like 2026-03-02")
			}
			r, err := engine.ParseRecurrence(repeat)
			if err != nil {
				return err
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			events, err := svc.AddRecurringStudyBlocks(ctx, strings.Join(args, " "), when, r, count)
			if err != nil {
				return err
			}
			for _, e := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconCal+" Scheduled"), e.Date.Local().Format(dateLayout), ui.Muted.Render(e.ID))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", time.Now().Format(dateLayout), "date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&repeat, "repeat", "r", "once", "once, daily, weekly or monthly")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of occurrences")
	return cmd
}

func newCalendarRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <event_id>",
		Short: "Remove a study block",
		Args:  exactArgs(1, "event_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.RemoveStudyBlock(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Removed "+args[0]))
			return nil
		},
	}
}
