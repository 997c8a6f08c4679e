package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rachamuffin/rachamuffin/internal/daemon"
	"github.com/rachamuffin/rachamuffin/internal/domain"
)

// withDaemon opens the save, runs fn under the engine lock and prints
// the notifications fn produced.
func withDaemon(cmd *cobra.Command, fn func(d *daemon.Daemon) error) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	d.Lock()
	runErr := fn(d)
	d.Unlock()

	printNotifications(cmd.OutOrStdout(), d)
	return runErr
}

// printNotifications drains the inbox to w.
func printNotifications(w io.Writer, d *daemon.Daemon) {
	list, err := d.Inbox.Drain(0)
	if err != nil {
		d.Log.Warn().Err(err).Msg("drain notifications")
		return
	}
	for _, n := range list {
		fmt.Fprintf(w, "%s %s\n", levelTag(n.Level), n.Message)
	}
}

func levelTag(l domain.NotifyLevel) string {
	switch l {
	case domain.NotifySuccess:
		return "[ok]"
	case domain.NotifyWarning:
		return "[!]"
	case domain.NotifyError:
		return "[error]"
	default:
		return "[i]"
	}
}

func printAchievements(w io.Writer, list []domain.Achievement) {
	for _, a := range list {
		fmt.Fprintf(w, "  %s %s (+%d coins)\n", a.Icon, a.Name, a.Reward.Coins)
	}
}
