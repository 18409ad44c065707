package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	depositBuyer  int
	depositAmount string
)

// depositCmd represents the deposit command.
var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit money into a buyer's bank account",
	Long: `Deposit a positive amount into a buyer's bank account. A dormant account
is reactivated once its balance becomes positive.

Example:
  marketctl deposit --buyer 1 --amount 25.50`,
	Run: runDeposit,
}

func init() {
	depositCmd.Flags().IntVar(&depositBuyer, "buyer", 0, "Buyer ID (required)")
	depositCmd.Flags().StringVar(&depositAmount, "amount", "", "Amount to deposit (required)")

	depositCmd.MarkFlagRequired("buyer")
	depositCmd.MarkFlagRequired("amount")
}

func runDeposit(cmd *cobra.Command, args []string) {
	amount, err := decimal.NewFromString(depositAmount)
	exitOnError(err, "invalid amount")

	cfg := loadConfig()
	svc, _, closeJournal := openService(cfg)
	defer closeJournal()

	reactivated, err := svc.Deposit(depositBuyer, amount)
	exitOnError(err, "deposit failed")

	fmt.Printf("Deposited $%s to buyer %d\n", amount.StringFixed(2), depositBuyer)
	if reactivated {
		fmt.Println("Account reactivated")
	}
}
