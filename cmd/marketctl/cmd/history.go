package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/marketplace/pkg/db"
)

var (
	historyBuyer  int
	historyOrder  int
	historyRecent int
)

// historyCmd represents the history command.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show ledger events from the journal",
	Long: `Show journal events for one buyer, for one order, or the most recent
events across the whole ledger.

Example:
  marketctl history --buyer 1
  marketctl history --order 3
  marketctl history --recent 50`,
	Run: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyBuyer, "buyer", 0, "Buyer ID")
	historyCmd.Flags().IntVar(&historyOrder, "order", 0, "Transaction ID")
	historyCmd.Flags().IntVar(&historyRecent, "recent", 20, "Number of latest events")

	historyCmd.MarkFlagsMutuallyExclusive("buyer", "order", "recent")
}

type eventSource interface {
	EventsForBuyer(buyerID int) ([]db.Event, error)
	EventsForTransaction(transactionID int) ([]db.Event, error)
	Recent(limit int) ([]db.Event, error)
}

// selectHistory picks the journal query matching the flags. buyer wins over
// order, and the recent limit applies when neither is set.
func selectHistory(src eventSource, buyer, order, recent int) ([]db.Event, error) {
	switch {
	case buyer > 0:
		return src.EventsForBuyer(buyer)
	case order > 0:
		return src.EventsForTransaction(order)
	case recent > 0:
		return src.Recent(recent)
	default:
		return nil, fmt.Errorf("recent must be positive, got %d", recent)
	}
}

func writeHistory(out io.Writer, events []db.Event) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKIND\tBUYER\tSELLER\tORDER\tAMOUNT\tNOTE")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.RecordedAt.Format("2006-01-02 15:04:05"), e.Kind,
			optionalID(e.BuyerID), optionalID(e.SellerID), optionalID(e.TransactionID),
			"$"+e.Amount.StringFixed(2), e.Note)
	}
	return w.Flush()
}

func optionalID(id int) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", id)
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	journalPath := cfg.Paths().GetJournalPath()
	slog.Debug("Opening journal", "path", journalPath)
	conn, err := db.Open(journalPath)
	exitOnError(err, "failed to open journal")
	defer conn.Close()

	events, err := selectHistory(db.NewJournal(conn), historyBuyer, historyOrder, historyRecent)
	exitOnError(err, "failed to query journal")

	if len(events) == 0 {
		fmt.Println("No events")
		return
	}
	exitOnError(writeHistory(os.Stdout, events), "failed to write output")
}
