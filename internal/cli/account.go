package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rachamuffin/rachamuffin/internal/app/account"
	"github.com/rachamuffin/rachamuffin/internal/daemon"
)

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringP("password", "p", "", "Password (read from stdin when omitted)")
	}
	streakTypeCmd.Flags().StringVar(&customStreak, "custom", "", "Description for the custom streak type")
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd, streakTypeCmd)
}

var customStreak string

var registerCmd = &cobra.Command{
	Use:   "register USERNAME",
	Short: "Create a local profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, args[0], func(d *daemon.Daemon) func(string, string) (account.User, error) {
			return d.Accounts.Register
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Log in to a local profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, args[0], func(d *daemon.Daemon) func(string, string) (account.User, error) {
			return d.Accounts.Login
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			return d.Accounts.Logout()
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			u, err := d.Accounts.Current()
			if err != nil {
				return err
			}
			p := u.Profile()
			fmt.Fprintf(cmd.OutOrStdout(), "%s tracking %s since %s\n",
				p.Username, p.StreakName, p.CreatedAt.Local().Format("2006-01-02"))
			return nil
		})
	},
}

var streakTypeCmd = &cobra.Command{
	Use:       "streak-type TYPE",
	Short:     "Choose what your streak tracks",
	Long:      "Choose what your streak tracks: " + strings.Join(account.StreakTypes(), ", ") + ".",
	Args:      cobra.ExactArgs(1),
	ValidArgs: account.StreakTypes(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			u, unlocked, err := d.Accounts.SetStreakType(args[0], customStreak)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Now tracking %s\n", u.Profile().StreakName)
			printAchievements(cmd.OutOrStdout(), unlocked)
			return nil
		})
	},
}

func authenticate(cmd *cobra.Command, username string, pick func(d *daemon.Daemon) func(string, string) (account.User, error)) error {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		var err error
		if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	return withDaemon(cmd, func(d *daemon.Daemon) error {
		u, err := pick(d)(username, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.Username)
		return nil
	})
}

// readPassword reads one line from r.
func readPassword(r io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}
