package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eduquest/internal/ui"
)

const Version = "0.1.0"

// Persistent flags.
var (
	flagDB  string
	flagYes bool
)

// newRootCmd builds the command tree. Persistent flags are bound to the
// package globals and reset on every call.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eq",
		Short:         "EduQuest: study quests, skill trees and a shop for learners",
		Long:          "EduQuest turns study into an RPG: complete quests for XP and gold, learn skills per subject and spend gold in the shop.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (sqlite store, overrides EDUQUEST_DB)")
	cmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "answer yes to confirmation prompts")

	cmd.AddCommand(
		newStatusCmd(),
		newAchievementsCmd(),
		newHistoryCmd(),
		newQuestsCmd(),
		newProgressCmd(),
		newCompleteCmd(),
		newRepeatCmd(),
		newVisitCmd(),
		newShopCmd(),
		newBuyCmd(),
		newUseCmd(),
		newSkillsCmd(),
		newLearnCmd(),
		newRespecCmd(),
		newEquipCmd(),
		newThemeCmd(),
		newRenameCmd(),
		newSettingsCmd(),
		newCalendarCmd(),
		newQuizCmd(),
		newBattleCmd(),
		newOnboardingCmd(),
		newTickCmd(),
		newResetCmd(),
		newBoardCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
