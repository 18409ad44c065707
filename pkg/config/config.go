// Package config provides configuration management for the marketplace.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/shunichi-ikebuchi/marketplace/pkg/pathutil"
)

// Config represents the application configuration.
type Config struct {
	Market MarketConfig
	Debug  bool
}

// MarketConfig locates the data directory and its companions.
type MarketConfig struct {
	DataDir     string
	JournalPath string
	SeedFile    string
	// StatsDays is the trailing window used for per-seller sales figures.
	StatsDays int
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	statsDays, err := parseIntEnv("MARKET_STATS_DAYS", 30)
	if err != nil {
		return nil, err
	}
	if statsDays <= 0 {
		return nil, fmt.Errorf("invalid MARKET_STATS_DAYS: must be positive, got %d", statsDays)
	}

	config := &Config{
		Market: MarketConfig{
			DataDir:     getEnvOrDefault("MARKET_DATA_DIR", "./database"),
			JournalPath: os.Getenv("MARKET_JOURNAL_PATH"),
			SeedFile:    os.Getenv("MARKET_SEED_FILE"),
			StatsDays:   statsDays,
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Paths returns the path resolver for the configured data directory.
func (c *Config) Paths() *pathutil.PathResolver {
	return pathutil.New(pathutil.Config{
		DataDir:     c.Market.DataDir,
		JournalPath: c.Market.JournalPath,
	})
}

// Validate checks that every required setting is present.
// Settings are named by path, e.g. []string{"market", "seedFile"}.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 || path[0] != "market" {
			continue
		}

		var value string
		switch path[1] {
		case "dataDir":
			value = c.Market.DataDir
		case "journalPath":
			value = c.Market.JournalPath
		case "seedFile":
			value = c.Market.SeedFile
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
