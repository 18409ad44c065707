package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	payBuyer int
	payOrder int
)

// payCmd represents the pay command.
var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Pay a pending order",
	Long: `Settle one of the buyer's pending orders: the total moves from the
buyer's account to the seller's and the order is marked PAID.

Example:
  marketctl pay --buyer 1 --order 3`,
	Run: runPay,
}

func init() {
	payCmd.Flags().IntVar(&payBuyer, "buyer", 0, "Buyer ID (required)")
	payCmd.Flags().IntVar(&payOrder, "order", 0, "Transaction ID of the pending order (required)")

	payCmd.MarkFlagRequired("buyer")
	payCmd.MarkFlagRequired("order")
}

func runPay(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	svc, _, closeJournal := openService(cfg)
	defer closeJournal()

	order, err := svc.Pay(payBuyer, payOrder)
	exitOnError(err, "payment failed")

	fmt.Printf("Paid order #%d to %s: $%s\n", order.ID, order.SellerName, order.Total.StringFixed(2))
}
