package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eduquest/internal/engine"
	"eduquest/internal/ui"
)

func newEquipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equip [layer part_id]",
		Short: "Equip an avatar part, or show the avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("layer and part_id required")
			}
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 2 {
				return svc.EquipAvatarPart(ctx, args[0], args[1])
			}
			st := svc.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, st.Profile.Name))
			for _, layer := range svc.Catalog().Layers() {
				owned := st.Inventory.UnlockedAvatarParts[layer]
				fmt.Fprintf(out, "%s %s %s\n", ui.Key.Render(layer+":"), st.Profile.EquippedAvatar[layer], ui.Muted.Render("owned: "+strings.Join(owned, ", ")))
			}
			return nil
		},
	}
}

func newThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "theme [theme_id]",
		Short: "Apply an unlocked theme, or list themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 1 {
				return svc.ApplyTheme(ctx, args[0])
			}
			st := svc.Snapshot()
			out := cmd.OutOrStdout()
			for _, th := range svc.Catalog().Themes {
				mark := ui.Muted.Render(ui.IconLock)
				switch {
				case th.ID == st.Settings.CurrentTheme:
					mark = ui.Good.Render("●")
				case st.Inventory.HasTheme(th.ID):
					mark = ui.Good.Render("○")
				}
				fmt.Fprintf(out, "%s %s %s\n", mark, th.Name, ui.Muted.Render(th.ID))
			}
			return nil
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name>",
		Short: "Rename your character",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			return svc.Rename(ctx, strings.Join(args, " "))
		},
	}
}

var settingFlags = []string{"dark", "music", "sfx", "music-volume", "sfx-volume", "reminders", "performance", "auto-allocate"}

func newSettingsCmd() *cobra.Command {
	var (
		dark, music, sfx, reminders, perf bool
		musicVol, sfxVol                  float64
		autoAllocate                      string
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cleanup()

			fl := cmd.Flags()
			set := svc.Snapshot().Settings
			changed := false
			for _, name := range settingFlags {
				changed = changed || fl.Changed(name)
			}
			if changed {
				set, err = svc.UpdateSettings(ctx, func(s *engine.Settings) {
					if fl.Changed("dark") {
						s.DarkMode = dark
					}
					if fl.Changed("music") {
						s.MusicEnabled = music
					}
					if fl.Changed("sfx") {
						s.SFXEnabled = sfx
					}
					if fl.Changed("music-volume") {
						s.MusicVolume = musicVol
					}
					if fl.Changed("sfx-volume") {
						s.SFXVolume = sfxVol
					}
					if fl.Changed("reminders") {
						s.DueDateReminders = reminders
					}
					if fl.Changed("performance") {
						s.PerformanceMode = perf
					}
					if fl.Changed("auto-allocate") {
						s.SkillAutoAllocate = autoAllocate
					}
				})
				if err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.LabelValue("Dark mode", set.DarkMode))
			fmt.Fprintln(out, ui.LabelValue("Music", fmt.Sprintf("%v (%.2f)", set.MusicEnabled, set.MusicVolume)))
			fmt.Fprintln(out, ui.LabelValue("SFX", fmt.Sprintf("%v (%.2f)", set.SFXEnabled, set.SFXVolume)))
			fmt.Fprintln(out, ui.LabelValue("Due date reminders", set.DueDateReminders))
			fmt.Fprintln(out, ui.LabelValue("Performance mode", set.PerformanceMode))
			fmt.Fprintln(out, ui.LabelValue("Skill auto-allocate", set.SkillAutoAllocate))
			fmt.Fprintln(out, ui.LabelValue("Theme", set.CurrentTheme))
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&dark, "dark", false, "dark mode")
	f.BoolVar(&music, "music", true, "background music")
	f.BoolVar(&sfx, "sfx", true, "sound effects")
	f.Float64Var(&musicVol, "music-volume", 0.5, "music volume (0-1)")
	f.Float64Var(&sfxVol, "sfx-volume", 0.75, "sfx volume (0-1)")
	f.BoolVar(&reminders, "reminders", true, "due date reminders")
	f.BoolVar(&perf, "performance", false, "performance mode")
	f.StringVar(&autoAllocate, "auto-allocate", "none", "skill auto-allocate: none, balanced or <subject>-focus")
	return cmd
}
