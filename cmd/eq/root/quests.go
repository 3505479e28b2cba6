package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"eduquest/internal/engine"
	"eduquest/internal/ui"
)

func newQuestsCmd() *cobra.Command {
	var all bool
	var subject string
	cmd := &cobra.Command{
		Use:   "quests",
		Short: "List quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			if subject != "" {
				name, ok := engine.ParseSubject(svc.Catalog(), subject)
				if !ok {
					return fmt.Errorf("unknown subject %q", subject)
				}
				subject = name
			}
			svc.Tick(ctx)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconQuest, "Quests"))
			for _, q := range svc.Quests(all) {
				if subject != "" && q.Subject != subject {
					continue
				}
				fmt.Fprintln(out, questLine(q))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include hidden quests")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "only quests for this subject (aliases like 'math' work)")
	return cmd
}

func questLine(q engine.QuestView) string {
	progress := ""
	if q.TargetProgress > 1 && !q.IsCompleted {
		progress = " " + ui.Muted.Render(fmt.Sprintf("%g/%g", q.Progress, q.TargetProgress))
	}
	return fmt.Sprintf("%s %s %s%s %s %s",
		ui.QuestIcon(string(q.Type)),
		ui.Muted.Render(q.ID),
		q.Title,
		progress,
		ui.StatusText(string(q.Status)),
		ui.Muted.Render(fmt.Sprintf("(+%g XP, +%d gold)", q.XPReward, q.GoldReward)))
}

func exactArgs(n int, names string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%s required", names)
		}
		return nil
	}
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("amount must be a number")
	}
	return v, nil
}

func newProgressCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "progress <quest_id> <amount>",
		Short: "Add progress to a quest",
		Args:  exactArgs(2, "quest_id and amount"),
		RunE: func(cmd *cobra.Command, args []string) error {
			inc, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.UpdateQuestProgress(ctx, args[0], inc, check)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.H2.Render("Progress"), ui.Muted.Render(res.QuestID), fmt.Sprintf("%g/%g", res.Progress, res.TargetProgress))
			if res.Completion != nil {
				printLevelUp(cmd, res.Completion.XP)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&check, "check", "c", false, "try to complete the quest after updating")
	return cmd
}

func newCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <quest_id> [progress]",
		Short: "Complete a quest, reporting the current progress",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return errors.New("quest_id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			q, ok := svc.Quest(args[0])
			if !ok {
				return fmt.Errorf("quest %q not found", args[0])
			}
			progress := q.ReportedProgress()
			if len(args) == 2 {
				if progress, err = parseAmount(args[1]); err != nil {
					return err
				}
			}
			res, err := svc.CompleteQuest(ctx, q.ID, progress)
			if err != nil {
				return err
			}
			printLevelUp(cmd, res.XP)
			return nil
		},
	}
	return cmd
}

func printLevelUp(cmd *cobra.Command, xp engine.XPResult) {
	if xp.LevelUps() == 0 {
		return
	}
	line := fmt.Sprintf("%s %d → %d", ui.BadgeLevelUp, xp.LevelBefore, xp.LevelAfter)
	if xp.SkillPointsGained > 0 {
		line += ui.Muted.Render(fmt.Sprintf(" (+%d skill points)", xp.SkillPointsGained))
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}

func newRepeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repeat <quest_id>",
		Short: "Reset a completed repeatable quest",
		Args:  exactArgs(1, "quest_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.RepeatQuest(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconLoop+" Ready again:"), args[0])
			return nil
		},
	}
}

func newVisitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visit <view>",
		Short: "Record a visit to a view (dashboard, shop, skills...)",
		Args:  exactArgs(1, "view"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			done := svc.VisitView(ctx, args[0])
			if len(done) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Nothing was waiting on that view."))
			}
			return nil
		},
	}
}
