package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rachamuffin/rachamuffin/internal/app/engagement"
	"github.com/rachamuffin/rachamuffin/internal/daemon"
	"github.com/rachamuffin/rachamuffin/internal/domain"
)

func init() {
	avatarSetCmd.Flags().StringVar(&avatarPatch.Name, "name", "", "Avatar name")
	avatarSetCmd.Flags().StringVar(&avatarPatch.Style, "style", "", "Avatar style")
	avatarSetCmd.Flags().StringVar(&avatarPatch.Seed, "seed", "", "Avatar seed")
	avatarSetCmd.Flags().StringVar(&avatarPatch.Customization.Mood, "mood", "", "Mood")
	avatarSetCmd.Flags().StringVar(&avatarPatch.Customization.Pet, "pet", "", "Pet")
	avatarSetCmd.Flags().StringVar(&avatarPatch.Customization.Background, "background", "", "Background")
	avatarSetCmd.Flags().StringVar(&avatarPatch.Customization.Accessory, "accessory", "", "Accessory")

	challengesCmd.AddCommand(challengeProgressCmd)
	avatarPresetCmd.AddCommand(avatarPresetSaveCmd, avatarPresetListCmd, avatarPresetLoadCmd)
	avatarCmd.AddCommand(avatarAckCmd, avatarSetCmd, avatarRandomCmd, avatarPresetCmd)
	rootCmd.AddCommand(achievementsCmd, challengesCmd, avatarCmd)
}

var avatarPatch engagement.AvatarPatch

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tNAME\tDESCRIPTION\tREWARD\tSTATUS")
			for _, a := range d.Engine.Game.Achievements() {
				status := "locked"
				if a.Unlocked {
					status = "unlocked"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.Icon, a.Name, a.Description, a.Reward.Coins, status)
			}
			return w.Flush()
		})
	},
}

var challengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "Show today's challenges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPROGRESS\tREWARD")
			for _, c := range d.Engine.Challenges() {
				fmt.Fprintf(w, "%s\t%s %s\t%s\t%d coins, %d exp\n",
					c.ID, c.Icon, c.Name, challengeProgress(c), c.Reward.Coins, c.Reward.Exp)
			}
			return w.Flush()
		})
	},
}

var challengeProgressCmd = &cobra.Command{
	Use:   "progress ID [INCREMENT]",
	Short: "Advance one of today's challenges",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inc := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("increment %q: %w", args[1], domain.ErrInvalidAmount)
			}
			inc = n
		}
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			res, err := d.Engine.ProgressChallenge(args[0], inc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", res.Challenge.Name, challengeProgress(res.Challenge))
			printAchievements(cmd.OutOrStdout(), res.Unlocked)
			return nil
		})
	},
}

var avatarCmd = &cobra.Command{
	Use:   "avatar",
	Short: "Show the avatar and its evolution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			st := d.Engine.Avatar.CheckEvolution()
			av := d.Engine.Avatar.Avatar()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, seed %s)\n", av.Name, av.Style, av.Seed)
			fmt.Fprintf(out, "Evolution: %s, level %d  %s\n", st.Level.Name, st.Level.Level, renderBar(st.Progress))
			if st.Triggered {
				fmt.Fprintln(out, "Run 'rachamuffin avatar ack' to acknowledge the evolution.")
			}
			return nil
		})
	},
}

var avatarAckCmd = &cobra.Command{
	Use:   "ack",
	Short: "Acknowledge the avatar evolution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			streak := d.Engine.Avatar.AcknowledgeEvolution()
			fmt.Fprintf(cmd.OutOrStdout(), "Evolution acknowledged at streak %d\n", streak)
			return nil
		})
	},
}

var avatarSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Customize the avatar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			av := d.Engine.Avatar.UpdateAvatar(d.Engine.Clock().Now(), avatarPatch)
			fmt.Fprintf(cmd.OutOrStdout(), "Avatar saved: %s (%s)\n", av.Name, av.Style)
			return nil
		})
	},
}

var avatarRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Apply a random style and customization",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			av := d.Engine.Avatar.Randomize(d.Engine.Clock().Now())
			fmt.Fprintf(cmd.OutOrStdout(), "Avatar saved: %s (%s)\n", av.Name, av.Style)
			return nil
		})
	},
}

var avatarPresetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Save and load avatar presets",
}

var avatarPresetSaveCmd = &cobra.Command{
	Use:   "save [NAME]",
	Short: "Save the current avatar as a preset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			p := d.Engine.Avatar.SavePreset(d.Engine.Clock().Now(), name)
			fmt.Fprintf(cmd.OutOrStdout(), "Preset %q saved as %s\n", p.Name, p.ID)
			return nil
		})
	},
}

var avatarPresetListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved presets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			presets := d.Engine.Avatar.Presets()
			if len(presets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No presets saved.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTYLE\tSAVED")
			for _, p := range presets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Avatar.Style,
					time.UnixMilli(p.Timestamp).Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

var avatarPresetLoadCmd = &cobra.Command{
	Use:   "load ID",
	Short: "Make a saved preset the current avatar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			av, err := d.Engine.Avatar.LoadPreset(d.Engine.Clock().Now(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Avatar saved: %s (%s)\n", av.Name, av.Style)
			return nil
		})
	},
}

func challengeProgress(c domain.DailyChallenge) string {
	if c.Completed {
		return fmt.Sprintf("%d/%d done", c.Progress, c.Target)
	}
	return fmt.Sprintf("%d/%d", c.Progress, c.Target)
}
