package cmd

import (
	"fmt"

	"github.com/jfmyers9/tracklog/internal/config"
	"github.com/spf13/cobra"
)

var statsDataDir string

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <username>",
	Short: "Print listening statistics from local data",
	Long: `Print aggregate listening statistics for a user from the locally
stored history. No network requests are made; run 'tracklog sync'
first to fetch data.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsDataDir, "data-dir", "", "Data directory for per-user databases (default: ~/.local/share/tracklog)")
}

func runStats(cmd *cobra.Command, args []string) error {
	username := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	s, err := openUserStore(cfg, username, statsDataDir)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return printReport(cmd.Context(), s, username)
}
