package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rachamuffin/rachamuffin/internal/daemon"
	"github.com/rachamuffin/rachamuffin/internal/domain"
)

func init() {
	spendCmd.Flags().StringVar(&spendReason, "reason", "", "What the coins were spent on")
	rootCmd.AddCommand(completeCmd, checkCmd, statusCmd, spendCmd, shareCmd, coinsCmd)
}

var spendReason string

var completeCmd = &cobra.Command{
	Use:     "complete",
	Aliases: []string{"done"},
	Short:   "Complete today's mission",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			res := d.Engine.CompleteMission()
			out := cmd.OutOrStdout()
			if res.Break.Broken {
				fmt.Fprintf(out, "Streak of %d lost (%.0fh since last mission), -%d coins\n",
					res.Break.Lost, res.Break.HoursSince, res.Break.CoinsLost)
			}
			fmt.Fprintf(out, "Streak: %d  Coins: %d  Avatar: %s\n",
				res.State.Streak, res.State.Coins, res.Avatar.Level.Name)
			if res.Outcome == domain.OutcomeAlreadyCompleted {
				fmt.Fprintln(out, "Already completed today.")
			}
			return nil
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Apply a pending streak break",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			res := d.Engine.CheckStreak()
			if !res.Broken {
				fmt.Fprintln(cmd.OutOrStdout(), "Streak is safe.")
			}
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show streak, level and avatar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			snap := d.Engine.Status()
			out := cmd.OutOrStdout()

			last := snap.State.LastCompletionDate
			if last == "" {
				last = "never"
			}
			fmt.Fprintf(out, "Streak:       %d (best %d)\n", snap.State.Streak, snap.Stats.MaxStreak)
			fmt.Fprintf(out, "Coins:        %d\n", snap.State.Coins)
			fmt.Fprintf(out, "Last mission: %s\n", last)
			fmt.Fprintf(out, "Level:        %d  %s %d/%d exp\n",
				snap.Stats.Level, renderBar(snap.Stats.Progress), snap.Stats.Exp, snap.Stats.ExpToNext)
			fmt.Fprintf(out, "Avatar:       %s (%s)  %s\n",
				snap.Profile.Name, snap.Avatar.Level.Name, renderBar(snap.Avatar.Progress))
			fmt.Fprintf(out, "Missions:     %d  Achievements: %d\n", snap.Stats.TotalStreaks, snap.Stats.Achievements)
			if len(snap.Stats.Titles) > 0 {
				fmt.Fprintf(out, "Titles:       %s\n", strings.Join(snap.Stats.Titles, ", "))
			}
			return nil
		})
	},
}

var spendCmd = &cobra.Command{
	Use:   "spend AMOUNT",
	Short: "Spend coins on a reward",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("amount %q: %w", args[0], domain.ErrInvalidAmount)
		}
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			bal, unlocked, err := d.Engine.Spend(amount, spendReason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Spent %d coins. Balance: %d\n", amount, bal)
			printAchievements(cmd.OutOrStdout(), unlocked)
			return nil
		})
	},
}

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Record that you shared your progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			printAchievements(cmd.OutOrStdout(), d.Engine.Share())
			return nil
		})
	},
}

var coinsCmd = &cobra.Command{
	Use:   "coins",
	Short: "Show the coin balance and recent movements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %d\n", d.Engine.Wallet.Balance())
			entries, err := d.Engine.Wallet.History(20)
			if err != nil || len(entries) == 0 {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tKIND\tAMOUNT\tBALANCE\tDESCRIPTION")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%+d\t%d\t%s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04"), e.Kind, e.Amount, e.Balance, e.Description)
			}
			return w.Flush()
		})
	},
}
