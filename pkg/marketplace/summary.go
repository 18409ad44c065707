package marketplace

import (
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/marketplace/pkg/market"
)

// SellerSales is the recent revenue of one store.
type SellerSales struct {
	SellerID  int
	StoreName string
	Sales     decimal.Decimal
}

// Summary is a point-in-time overview of the marketplace.
type Summary struct {
	Buyers          int
	Sellers         int
	Accounts        int
	DormantAccounts int
	Pending         int
	Settled         int
	TotalBalance    decimal.Decimal
	RecentSales     []SellerSales
}

// Summarize computes a Summary with per-store sales over the last days.
func (s *Service) Summarize(days int) Summary {
	var sum Summary
	s.View(func(state *market.State) {
		sum = Summary{
			Buyers:       len(state.Buyers),
			Sellers:      len(state.Sellers),
			Accounts:     len(state.Accounts),
			Pending:      len(state.PendingOrders),
			Settled:      len(state.Transactions),
			TotalBalance: decimal.Zero,
		}
		for _, acc := range state.Accounts {
			sum.TotalBalance = sum.TotalBalance.Add(acc.Balance)
			if acc.IsDormant() {
				sum.DormantAccounts++
			}
		}
		for _, sel := range state.Sellers {
			sum.RecentSales = append(sum.RecentSales, SellerSales{
				SellerID:  sel.SellerID,
				StoreName: sel.StoreName,
				Sales:     state.SalesInLastDays(sel.SellerID, days, ""),
			})
		}
	})
	return sum
}
