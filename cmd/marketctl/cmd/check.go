package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/marketplace/pkg/store"
)

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report rows that would be dropped on load",
	Long: `Load the data directory without modifying its record files and report
malformed rows, duplicate or invalid ids and references that do not resolve. Exits with status 1 when
anything would be dropped.

Example:
  marketctl check`,
	Run: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	pathResolver := cfg.Paths()

	state, report, err := store.NewFileSystem(pathResolver).Load()
	exitOnError(err, "failed to load data directory")

	if !report.Found {
		fmt.Printf("No record files in %s\n", pathResolver.GetDataDir())
		return
	}

	fmt.Printf("Loaded %d buyers, %d sellers, %d accounts, %d orders (%d pending)\n",
		len(state.Buyers), len(state.Sellers), len(state.Accounts),
		len(state.Transactions)+len(state.PendingOrders), len(state.PendingOrders))

	if report.Clean() {
		fmt.Println("OK")
		return
	}

	files := make([]string, 0, len(report.SkippedRows))
	for name, n := range report.SkippedRows {
		if n > 0 {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	for _, name := range files {
		fmt.Printf("  %-22s %d malformed rows\n", name, report.SkippedRows[name])
	}

	problems := []struct {
		label string
		count int
	}{
		{"duplicate ids", report.DuplicateRows},
		{"out of range values", report.InvalidRows},
		{"sellers without buyer", report.DroppedSellers},
		{"items without seller", report.OrphanItems},
		{"line items without order", report.OrphanLineItems},
		{"buyers with missing account", report.UnlinkedBuyers},
	}
	for _, p := range problems {
		if p.count > 0 {
			fmt.Printf("  %-22s %d\n", p.label, p.count)
		}
	}

	exitOnError(fmt.Errorf("data directory has rows that are dropped on load"), "check failed")
}
