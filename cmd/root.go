package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tracklog",
	Short: "Last.fm listening history collector",
	Long: `tracklog incrementally fetches a Last.fm user's listening history
into a local per-user database and reports listening statistics.

Each run fetches as much history as the per-session request quota
allows. Time windows that could not be fetched yet are remembered, so
repeated runs converge on the complete history.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
