package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/marketplace/pkg/market"
)

var (
	ordersBuyer  int
	ordersSeller int
)

// ordersCmd represents the orders command.
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List the orders of a buyer or a seller",
	Long: `List settled orders followed by pending ones, for either a buyer or a
seller.

Example:
  marketctl orders --buyer 1
  marketctl orders --seller 2`,
	Run: runOrders,
}

func init() {
	ordersCmd.Flags().IntVar(&ordersBuyer, "buyer", 0, "Buyer ID")
	ordersCmd.Flags().IntVar(&ordersSeller, "seller", 0, "Seller ID")

	ordersCmd.MarkFlagsOneRequired("buyer", "seller")
	ordersCmd.MarkFlagsMutuallyExclusive("buyer", "seller")
}

func runOrders(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	svc, _, closeJournal := openService(cfg)
	defer closeJournal()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tBUYER\tSTORE\tITEMS\tTOTAL\tSTATUS")

	svc.View(func(state *market.State) {
		var orders []*market.Transaction
		if ordersBuyer != 0 {
			orders = state.OrdersForBuyer(ordersBuyer)
		} else {
			orders = state.OrdersForSeller(ordersSeller)
		}

		for _, t := range orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t$%s\t%s\n",
				t.ID, t.Date, t.BuyerName, t.SellerName, len(t.Items), t.Total.StringFixed(2), t.Status)
		}
	})

	exitOnError(w.Flush(), "failed to write output")
}
