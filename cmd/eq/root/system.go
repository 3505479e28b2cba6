package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eduquest/internal/config"
	"eduquest/internal/tui"
	"eduquest/internal/ui"
)

func newTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run focus regeneration and the daily refresh check",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			focus, reset := svc.Tick(ctx)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.LabelValue("Focus", fmt.Sprintf("%g (+%g)", focus.Focus, focus.Gained)))
			if reset.Ran {
				fmt.Fprintln(out, ui.LabelValue("Daily quests reset", len(reset.Reset)))
			}
			fmt.Fprintln(out, ui.LabelValue("Next refresh", svc.NextRefresh().Local().Format("Mon 15:04")))
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			ok, err := svc.ResetGame(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Reset cancelled."))
			}
			return nil
		},
	}
}

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI quest board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pres := tui.NewPresenter()
			svc, cleanup, err := openServiceWith(ctx, pres)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(ctx, svc, pres, cfg.TickInterval, cmd.OutOrStdout())
		},
	}

	return cmd
}
