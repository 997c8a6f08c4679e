package cli

import (
	"github.com/spf13/cobra"

	"github.com/rachamuffin/rachamuffin/internal/daemon"
)

func init() {
	rootCmd.AddCommand(notificationsCmd)
}

// Commands drain their own notifications; this shows the ones queued by
// the API server.
var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Show pending notifications",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error { return nil })
	},
}
