package market

import "fmt"

// Pay settles a pending order of the buyer.
//
// Checks run in this order and none of them mutates state: the order must be
// pending and belong to the buyer, the buyer must have an account, the
// account must not be dormant, the balance must cover the total, and the
// seller must have an account to credit. Only then is the total moved from
// the buyer to the seller, the order marked PAID and moved to history.
func (s *State) Pay(buyerID, transactionID int) (*Transaction, error) {
	idx := s.pendingIndex(buyerID, transactionID)
	if idx < 0 {
		return nil, ErrOrderNotFound
	}
	order := s.PendingOrders[idx]

	buyerAcc, err := s.buyerAccount(buyerID)
	if err != nil {
		return nil, err
	}
	if buyerAcc.IsDormant() {
		return nil, ErrAccountDormant
	}
	if buyerAcc.Balance.LessThan(order.Total) {
		return nil, fmt.Errorf("balance %s, need %s: %w",
			buyerAcc.Balance.StringFixed(2), order.Total.StringFixed(2), ErrInsufficientFunds)
	}

	sel, ok := s.FindSeller(order.SellerID)
	if !ok {
		return nil, ErrSellerAccountMissing
	}
	sellerAcc, ok := s.SellerAccount(sel)
	if !ok {
		return nil, ErrSellerAccountMissing
	}

	if err := buyerAcc.Withdraw(order.Total); err != nil {
		return nil, err
	}
	sellerAcc.Deposit(order.Total)

	order.Status = StatusPaid
	s.settle(idx)
	return order, nil
}
