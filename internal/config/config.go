package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// DataDir is where the per-user databases live
	DataDir string

	// RequestLimit is the per-session upstream request quota
	RequestLimit int

	// BoundarySlack is the short-gap slack in seconds used when
	// reconciling fetched windows
	BoundarySlack int64

	// Last.fm API credentials
	LastFM LastFMConfig
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("request_limit", 5)
	v.SetDefault("boundary_slack", 1)

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables (TRACKLOG_LASTFM_API_KEY etc.)
	v.SetEnvPrefix("TRACKLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		DataDir:       v.GetString("data_dir"),
		RequestLimit:  v.GetInt("request_limit"),
		BoundarySlack: v.GetInt64("boundary_slack"),
		LastFM: LastFMConfig{
			APIKey: v.GetString("lastfm.api_key"),
		},
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "tracklog")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// defaultDataDir returns the default location for per-user databases
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "dbs"
	}
	return filepath.Join(homeDir, ".local", "share", "tracklog")
}
