package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/marketplace/pkg/seed"
)

var seedFile string

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import buyers, accounts and stores from a YAML fixture",
	Long: `Import a YAML fixture into the data directory.

Buyers get the next free ids, so seeding twice creates duplicates under new
ids. The file defaults to MARKET_SEED_FILE.

Example:
  marketctl seed --file fixtures/demo.yaml`,
	Run: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture to import")
}

func runSeed(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if seedFile != "" {
		cfg.Market.SeedFile = seedFile
	}
	if err := cfg.Validate([]string{"market", "seedFile"}); err != nil {
		exitOnError(err, "no seed file given")
	}

	fixture, err := seed.Load(cfg.Market.SeedFile)
	exitOnError(err, "failed to load seed file")

	svc, journal, closeJournal := openService(cfg)
	defer closeJournal()

	result, err := svc.Seed(fixture, cfg.Market.SeedFile)
	exitOnError(err, "failed to apply seed file")

	if err := journal.SetMetadata("seeded_from", cfg.Market.SeedFile); err != nil {
		slog.Warn("Failed to update journal metadata", "error", err)
	}

	fmt.Printf("Seeded %d buyers, %d accounts, %d stores, %d items\n",
		len(result.Buyers), result.Accounts, result.Sellers, result.Items)
}
