package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eduquest/internal/engine"
	"eduquest/internal/ui"
)

func printOnboarding(cmd *cobra.Command, v engine.OnboardingView) {
	out := cmd.OutOrStdout()
	if v.Completed || v.Current == nil {
		fmt.Fprintln(out, ui.Good.Render(ui.IconDone+" Tour finished."))
		return
	}
	fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(fmt.Sprintf("[%d/%d]", v.Step+1, v.Total)), ui.Title.Render(v.Current.Title))
	fmt.Fprintln(out, v.Current.Text)
}

func newOnboardingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Show the current step of the guided tour",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			printOnboarding(cmd, svc.Onboarding())
			return nil
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "next",
			Short: "Advance to the next tour step",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := context.Background()
				svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				defer cleanup()

				v, err := svc.AdvanceOnboarding(ctx)
				if err != nil {
					return err
				}
				printOnboarding(cmd, v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "skip",
			Short: "Skip the rest of the tour",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := context.Background()
				svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				defer cleanup()

				svc.SkipOnboarding(ctx)
				return nil
			},
		},
	)
	return cmd
}
