// Package cli implements the Rachamuffin command-line interface using Cobra.
// Each subcommand maps to one engine operation.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rachamuffin",
	Short: "Rachamuffin: daily mission streak tracker",
	Long: `Rachamuffin keeps your daily habit streak.
Complete one mission a day to grow your streak, earn coins,
level up, unlock achievements and evolve your avatar.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
