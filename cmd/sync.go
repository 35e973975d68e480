package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jfmyers9/tracklog/internal/config"
	"github.com/jfmyers9/tracklog/internal/history"
	"github.com/jfmyers9/tracklog/internal/stats"
	"github.com/jfmyers9/tracklog/internal/store"
	"github.com/jfmyers9/tracklog/pkg/lastfm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	syncDataDir      string
	syncLogLevel     string
	syncRequestLimit int
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync <username> [api-key]",
	Short: "Fetch a user's listening history from Last.fm",
	Long: `Run one polling session against Last.fm for the given user.

The session starts from the most recently stored track (or the
beginning of time for a new user) and works backwards through any
remembered gaps until it has caught up or spent its request quota.
A summary of the collected statistics is printed at the end.

The API key can be given as the second argument, in the config file
under lastfm.api_key, or via TRACKLOG_LASTFM_API_KEY.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncDataDir, "data-dir", "", "Data directory for per-user databases (default: ~/.local/share/tracklog)")
	syncCmd.Flags().StringVar(&syncLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	syncCmd.Flags().IntVar(&syncRequestLimit, "request-limit", 0, "Per-session request quota (default: 5)")
}

func runSync(cmd *cobra.Command, args []string) error {
	username := args[0]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	apiKey := cfg.LastFM.APIKey
	if len(args) > 1 {
		apiKey = args[1]
	}
	if apiKey == "" {
		return fmt.Errorf("no Last.fm API key configured")
	}

	requestLimit := cfg.RequestLimit
	if syncRequestLimit > 0 {
		requestLimit = syncRequestLimit
	}

	logger := setupLogger(syncLogLevel)

	// Abort between cycles on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openUserStore(cfg, username, syncDataDir)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	client, err := lastfm.NewClient(lastfm.Config{
		APIKey: apiKey,
		Logger: zerologAdapter{logger},
	})
	if err != nil {
		return fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	fetcher := history.NewLastFMFetcher(client, username, requestLimit)
	reconciler := history.NewReconciler(s, history.ReconcilerConfig{
		BoundarySlack: cfg.BoundarySlack,
	})
	session := history.NewSession(s, fetcher, reconciler, logger)

	logger.Info().
		Str("user", username).
		Int("request_limit", requestLimit).
		Msg("Starting sync session")

	outcome, err := session.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync session failed: %w", err)
	}

	logger.Info().
		Stringer("outcome", outcome).
		Int("requests", fetcher.Requests()).
		Msg("Sync session finished")

	return printReport(ctx, s, username)
}

// openUserStore opens the per-user database under the data directory.
func openUserStore(cfg *config.Config, username, dataDirOverride string) (*store.Store, error) {
	dataDir := dataDirOverride
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, username+".db")
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store for %q: %w", username, err)
	}
	return s, nil
}

// printReport collects and prints the stats summary.
func printReport(ctx context.Context, s *store.Store, username string) error {
	report, err := stats.Collect(ctx, s, username)
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	fmt.Print(report.Format())
	return nil
}

// zerologAdapter lets the lastfm client log through zerolog.
type zerologAdapter struct {
	logger zerolog.Logger
}

func (a zerologAdapter) Debugf(format string, args ...interface{}) {
	a.logger.Debug().Msgf(format, args...)
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logLevel string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	logger := zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
