package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"eduquest/internal/engine"
	"eduquest/internal/ui"
)

func resolveSubject(svc *engine.Service, input string) (string, error) {
	name, ok := engine.ParseSubject(svc.Catalog(), input)
	if !ok {
		return "", fmt.Errorf("unknown subject %q", input)
	}
	return name, nil
}

func newSkillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills [subject]",
		Short: "Show skill trees",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			subjects := svc.SkillSubjects()
			if len(args) > 0 {
				name, err := resolveSubject(svc, args[0])
				if err != nil {
					return err
				}
				subjects = []string{name}
			}
			fmt.Fprintf(out, "%s %s\n", ui.Heading(ui.IconTree, "Skills"), ui.LabelValue("points", svc.Snapshot().SkillPoints()))
			for _, subject := range subjects {
				nodes, err := svc.SkillTreeView(subject)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.H2.Render(subject))
				for _, n := range nodes {
					fmt.Fprintln(out, "  "+skillLine(n))
				}
			}
			return nil
		},
	}
}

func skillLine(n engine.SkillNodeView) string {
	var state string
	switch n.State {
	case engine.SkillUnlocked:
		state = ui.Good.Render(ui.IconDone)
	case engine.SkillLearnable:
		state = ui.Warn.Render(fmt.Sprintf("[%d]", n.Cost))
	default:
		state = ui.Muted.Render(ui.IconLock)
	}
	line := fmt.Sprintf("%s %s %s", state, n.Name, ui.Muted.Render(n.ID))
	if len(n.Missing) > 0 {
		line += ui.Dim.Render(fmt.Sprintf(" needs %v", n.Missing))
	}
	return line
}

func newLearnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn <subject> <skill_id>",
		Short: "Spend skill points on a skill",
		Args:  exactArgs(2, "subject and skill_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			subject, err := resolveSubject(svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.LearnSkill(ctx, subject, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Skill points left", svc.Snapshot().SkillPoints()))
			return nil
		},
	}
}

func newRespecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "respec",
		Short: "Refund every spent skill point for a gold fee",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.RespecSkills(ctx)
			if err != nil {
				return err
			}
			if res.GoldPaid == 0 && res.Refunded == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Respec cancelled."))
			}
			return nil
		},
	}
}
