package root

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"eduquest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show player stats, subjects and focus",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			svc.Tick(ctx)
			st := svc.Snapshot()
			rules := svc.Rules()
			p := st.Profile
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, p.Name))
			if next, ok := rules.Threshold(p.Level); ok {
				fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
				fmt.Fprintf(out, "%s %s %s\n", ui.Key.Render("XP:"), ui.Bar(p.XP, next, 20), ui.Muted.Render(fmt.Sprintf("%g/%g", p.XP, next)))
			} else {
				fmt.Fprintln(out, ui.LabelValue("Level", fmt.Sprintf("%d %s", p.Level, ui.Gold.Render("(max)"))))
			}
			fmt.Fprintln(out, ui.LabelValue("Gold", ui.Gold.Render(fmt.Sprintf("%s %d", ui.IconCoin, p.Gold))))
			fmt.Fprintf(out, "%s %s %s\n", ui.Key.Render("Focus:"), ui.Bar(p.Focus, rules.FocusMax, 20), ui.Muted.Render(fmt.Sprintf("%g/%g", p.Focus, rules.FocusMax)))
			fmt.Fprintln(out, ui.LabelValue("Skill points", st.SkillPoints()))
			fmt.Fprintln(out, ui.LabelValue("Next refresh", svc.NextRefresh().Local().Format("Mon 15:04")))
			fmt.Fprintln(out, "")

			subjects := make([]string, 0, len(p.Subjects))
			for name := range p.Subjects {
				subjects = append(subjects, name)
			}
			sort.Strings(subjects)
			fmt.Fprintln(out, ui.H2.Render(ui.IconBook+" Subjects"))
			for _, name := range subjects {
				sp := p.Subjects[name]
				if sp.XP == 0 && sp.Level == 0 {
					continue
				}
				fmt.Fprintf(out, "- %s lvl %d %s\n", name, sp.Level, ui.Muted.Render(fmt.Sprintf("(%g XP)", sp.XP)))
			}
			if unsaved := svc.Unsaved(); len(unsaved) > 0 {
				fmt.Fprintln(out, ui.Warn.Render(fmt.Sprintf("%s unsaved: %v", ui.IconWarn, unsaved)))
			}
			return nil
		},
	}

	return cmd
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and which ones are earned",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Achievements"))
			for _, a := range svc.Achievements() {
				mark := ui.Muted.Render(ui.IconLock)
				name := ui.Muted.Render(a.Name)
				if a.Earned {
					mark = a.Icon
					name = ui.Good.Render(a.Name)
				}
				fmt.Fprintf(out, "%s %s %s\n", mark, name, ui.Muted.Render(a.Description))
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent quest completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := svc.History(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No completions recorded yet."))
				return nil
			}
			for _, c := range list {
				title := c.QuestID
				if q, ok := svc.Quest(c.QuestID); ok {
					title = q.Title
				}
				fmt.Fprintf(out, "%s %s %s\n",
					ui.Muted.Render(c.CompletedAt.Local().Format("2006-01-02 15:04")),
					title,
					ui.Muted.Render(fmt.Sprintf("(+%g XP, +%d gold)", c.XPAwarded, c.GoldAwarded)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}
