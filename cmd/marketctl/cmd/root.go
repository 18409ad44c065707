// Package cmd provides CLI commands for marketctl.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/marketplace/pkg/config"
	"github.com/shunichi-ikebuchi/marketplace/pkg/db"
	"github.com/shunichi-ikebuchi/marketplace/pkg/marketplace"
	"github.com/shunichi-ikebuchi/marketplace/pkg/store"
)

var (
	cfgFile string
	debug   bool
	dataDir string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "marketctl",
	Short: "Administer a marketplace data directory",
	Long: `marketctl operates on the flat-file data directory of the marketplace
ledger: buyers, sellers, bank accounts, inventory and orders.

It supports:
- Creating and seeding a data directory
- Checking record files for dropped or malformed rows
- Deposits and order payments from the command line
- Ledger statistics and event history backed by the SQLite journal

Example:
  marketctl init --data-dir ./database
  marketctl seed --file fixtures/demo.yaml
  marketctl pay --buyer 1 --order 3`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug || os.Getenv("DEBUG") == "true" {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (overrides MARKET_DATA_DIR)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(depositCmd)
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(historyCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "" // Will use default .env loading
}

// loadConfig loads the configuration and applies the --data-dir override.
func loadConfig() *config.Config {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if dataDir != "" {
		cfg.Market.DataDir = dataDir
	}

	if err := cfg.Validate([]string{"market", "dataDir"}); err != nil {
		exitOnError(err, "invalid configuration")
	}

	return cfg
}

// openService opens the journal and loads the data directory. The returned
// func closes the journal.
func openService(cfg *config.Config) (*marketplace.Service, *db.Journal, func()) {
	pathResolver := cfg.Paths()

	journalPath := pathResolver.GetJournalPath()
	slog.Debug("Opening journal", "path", journalPath)
	conn, err := db.Open(journalPath)
	exitOnError(err, "failed to open journal")
	journal := db.NewJournal(conn)

	slog.Debug("Loading data directory", "path", pathResolver.GetDataDir())
	svc, _, err := marketplace.Open(store.NewFileSystem(pathResolver), journal)
	if err != nil {
		conn.Close()
		exitOnError(err, "failed to load data directory")
	}

	return svc, journal, func() { conn.Close() }
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
