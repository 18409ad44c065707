package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display marketplace statistics",
	Long: `Display statistics about the data directory and the ledger journal.

Shows:
- Number of buyers, sellers and accounts
- Pending and settled orders
- Sales per store over the last MARKET_STATS_DAYS days
- Journal event counts and the last recorded event

Example:
  marketctl stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	svc, journal, closeJournal := openService(cfg)
	defer closeJournal()

	summary := svc.Summarize(cfg.Market.StatsDays)

	stats, err := journal.GetStats()
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Marketplace ===")
	fmt.Printf("Buyers:           %d\n", summary.Buyers)
	fmt.Printf("Sellers:          %d\n", summary.Sellers)
	fmt.Printf("Accounts:         %d (%d dormant)\n", summary.Accounts, summary.DormantAccounts)
	fmt.Printf("Total balance:    $%s\n", summary.TotalBalance.StringFixed(2))
	fmt.Printf("Pending orders:   %d\n", summary.Pending)
	fmt.Printf("Settled orders:   %d\n", summary.Settled)

	if len(summary.RecentSales) > 0 {
		fmt.Printf("\nSales, last %d days:\n", cfg.Market.StatsDays)
		for _, s := range summary.RecentSales {
			fmt.Printf("  #%d %-24s $%s\n", s.SellerID, s.StoreName, s.Sales.StringFixed(2))
		}
	}

	fmt.Println("\n=== Journal ===")
	fmt.Printf("Events:           %d\n", stats.TotalEvents)
	fmt.Printf("Deposits:         %d\n", stats.Deposits)
	fmt.Printf("Payments:         %d ($%s)\n", stats.Payments, stats.PaidVolume.StringFixed(2))

	if stats.LastEvent.Valid {
		fmt.Printf("Last event:       %s\n", stats.LastEvent.String)
	} else {
		fmt.Printf("Last event:       (never)\n")
	}

	fmt.Println()

	slog.Debug("Statistics displayed successfully")
}
