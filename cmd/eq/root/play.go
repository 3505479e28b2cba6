package root

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"eduquest/internal/catalog"
	"eduquest/internal/ui"
)

// askQuestions prints each question and reads one answer line per question.
func askQuestions(out io.Writer, in io.Reader, b catalog.Battle) ([]string, error) {
	r := bufio.NewReader(in)
	qs := b.AllQuestions()
	answers := make([]string, 0, len(qs))
	for i, q := range qs {
		fmt.Fprintf(out, "%s %s\n", ui.Key.Render(fmt.Sprintf("Q%d.", i+1)), q.Text)
		for _, opt := range q.Options {
			fmt.Fprintln(out, "   "+opt)
		}
		if q.Hint != "" {
			fmt.Fprintln(out, ui.Dim.Render("   hint: "+q.Hint))
		}
		fmt.Fprint(out, ui.Muted.Render("> "))
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("read answer: %w", err)
		}
		answers = append(answers, strings.TrimSpace(line))
	}
	return answers, nil
}

func encounterAnswers(cmd *cobra.Command, id string, kind catalog.BattleKind, cat *catalog.Catalog, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	b, ok := cat.Battle(id)
	if !ok || b.Kind != kind {
		return nil, fmt.Errorf("%s %q not found", kind, id)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSword, b.Name))
	if b.Description != "" {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(b.Description))
	}
	return askQuestions(cmd.OutOrStdout(), os.Stdin, b)
}

func newQuizCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quiz <quiz_id> [answers...]",
		Short: "Take a quiz (answers are asked interactively when omitted)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			answers, err := encounterAnswers(cmd, args[0], catalog.BattleQuiz, svc.Catalog(), args[1:])
			if err != nil {
				return err
			}
			res, err := svc.SubmitQuiz(ctx, args[0], answers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d/%d %s\n", ui.H2.Render("Score:"), res.Correct, res.Total, ui.Gold.Render(fmt.Sprintf("%g%%", res.Score)))
			return nil
		},
	}
}

func newBattleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "battle <battle_id> [answers...]",
		Short: "Fight a boss battle (answers are asked interactively when omitted)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			answers, err := encounterAnswers(cmd, args[0], catalog.BattleBattle, svc.Catalog(), args[1:])
			if err != nil {
				return err
			}
			res, err := svc.FightBattle(ctx, args[0], answers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.H2.Render("Damage:"), ui.Bar(float64(res.Damage), float64(res.BossHealth), 20)+ui.Muted.Render(fmt.Sprintf(" %d/%d", res.Damage, res.BossHealth)))
			return nil
		},
	}
}
