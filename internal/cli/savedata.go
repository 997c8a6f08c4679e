package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rachamuffin/rachamuffin/internal/app/savedata"
	"github.com/rachamuffin/rachamuffin/internal/daemon"
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to file instead of stdout")
	resetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "Confirm deleting all progress")
	rootCmd.AddCommand(exportCmd, importCmd, resetCmd)
}

var (
	exportOut    string
	resetConfirm bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the save as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemon(cmd, func(d *daemon.Daemon) error {
			env := d.SaveData.Export(d.Engine.Clock().Now())

			var w io.Writer = cmd.OutOrStdout()
			if exportOut != "" {
				f, err := os.OpenFile(exportOut, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(env)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a save exported by this tool or the web app (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			b   []byte
			err error
		)
		if args[0] == "-" {
			b, err = io.ReadAll(cmd.InOrStdin())
		} else {
			b, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}
		env, err := savedata.Decode(b)
		if err != nil {
			return err
		}

		return withDaemon(cmd, func(d *daemon.Daemon) error {
			res, err := d.SaveData.Import(env)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d keys\n", len(res.Written))
			if len(res.Skipped) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped: %s\n", strings.Join(res.Skipped, ", "))
			}
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirm {
			return errors.New("reset deletes all progress; pass --yes to confirm")
		}
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		if !d.Reset() {
			return errors.New("reset incomplete, see log")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All progress deleted.")
		return nil
	},
}
