package market

import (
	"fmt"
)

// Pick is one requested line of an order.
type Pick struct {
	ItemID   int
	Quantity int
}

// Rejection explains why a pick was left out of an order.
type Rejection struct {
	Pick Pick
	Err  error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("item %d x%d: %v", r.Pick.ItemID, r.Pick.Quantity, r.Err)
}

// PlaceOrder creates a pending transaction for the picks that can be served.
//
// Each accepted pick is copied into the order and its quantity is taken out
// of the live inventory right away, so the units stay reserved until the
// order is paid or cancelled. Picks for unknown items or above the available
// quantity are returned as rejections. When no pick is accepted the order is
// discarded and ErrEmptyOrder is returned.
func (s *State) PlaceOrder(buyerID, sellerID int, picks []Pick) (*Transaction, []Rejection, error) {
	buyer, ok := s.FindBuyer(buyerID)
	if !ok {
		return nil, nil, ErrBuyerNotFound
	}
	sel, ok := s.FindSeller(sellerID)
	if !ok {
		return nil, nil, ErrSellerNotFound
	}

	order := &Transaction{
		BuyerID:    buyer.ID,
		BuyerName:  buyer.Name,
		SellerID:   sel.SellerID,
		SellerName: sel.StoreName,
		Status:     StatusPending,
		Date:       s.Today(),
	}

	var rejected []Rejection
	for _, pick := range picks {
		item, ok := sel.FindItem(pick.ItemID)
		switch {
		case !ok:
			rejected = append(rejected, Rejection{Pick: pick, Err: ErrItemNotFound})
			continue
		case pick.Quantity <= 0:
			rejected = append(rejected, Rejection{Pick: pick, Err: ErrInvalidQuantity})
			continue
		case pick.Quantity > item.Quantity:
			rejected = append(rejected, Rejection{Pick: pick, Err: ErrInsufficientStock})
			continue
		}

		order.AddItem(TransactionItem{
			ItemID:       item.ID,
			ItemName:     item.Name,
			Quantity:     pick.Quantity,
			PricePerUnit: item.Price,
		})
		item.Quantity -= pick.Quantity
	}

	if len(order.Items) == 0 {
		return nil, rejected, ErrEmptyOrder
	}

	order.ID = s.nextTransactionID
	if err := s.InsertTransaction(order); err != nil {
		return nil, rejected, err
	}
	return order, rejected, nil
}

// CancelOrder moves a pending order of the buyer to history as CANCELLED and
// returns the reserved quantities to the seller's items that still exist.
func (s *State) CancelOrder(buyerID, transactionID int) (*Transaction, error) {
	idx := s.pendingIndex(buyerID, transactionID)
	if idx < 0 {
		return nil, ErrOrderNotFound
	}
	order := s.PendingOrders[idx]

	if sel, ok := s.FindSeller(order.SellerID); ok {
		for _, line := range order.Items {
			if item, ok := sel.FindItem(line.ItemID); ok {
				item.Quantity += line.Quantity
			}
		}
	}

	order.Status = StatusCancelled
	s.settle(idx)
	return order, nil
}

// CompleteOrder marks a paid order of the seller as COMPLETED.
func (s *State) CompleteOrder(sellerID, transactionID int) (*Transaction, error) {
	for _, t := range s.Transactions {
		if t.ID != transactionID || t.SellerID != sellerID {
			continue
		}
		if t.Status != StatusPaid {
			return nil, fmt.Errorf("%s -> %s: %w", t.Status, StatusCompleted, ErrInvalidTransition)
		}
		t.Status = StatusCompleted
		return t, nil
	}
	return nil, ErrOrderNotFound
}

// FindTransaction looks a transaction up in pending orders and history.
func (s *State) FindTransaction(id int) (*Transaction, bool) {
	for _, t := range s.PendingOrders {
		if t.ID == id {
			return t, true
		}
	}
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// PendingFor returns the buyer's unpaid orders in placement order.
func (s *State) PendingFor(buyerID int) []*Transaction {
	var out []*Transaction
	for _, t := range s.PendingOrders {
		if t.BuyerID == buyerID {
			out = append(out, t)
		}
	}
	return out
}

// OrdersForSeller returns the seller's settled orders followed by its
// pending ones.
func (s *State) OrdersForSeller(sellerID int) []*Transaction {
	var out []*Transaction
	for _, t := range s.Transactions {
		if t.SellerID == sellerID {
			out = append(out, t)
		}
	}
	for _, t := range s.PendingOrders {
		if t.SellerID == sellerID {
			out = append(out, t)
		}
	}
	return out
}

// OrdersForBuyer returns the buyer's settled orders followed by its
// pending ones.
func (s *State) OrdersForBuyer(buyerID int) []*Transaction {
	var out []*Transaction
	for _, t := range s.Transactions {
		if t.BuyerID == buyerID {
			out = append(out, t)
		}
	}
	return append(out, s.PendingFor(buyerID)...)
}

func (s *State) pendingIndex(buyerID, transactionID int) int {
	for i, t := range s.PendingOrders {
		if t.ID == transactionID && t.BuyerID == buyerID {
			return i
		}
	}
	return -1
}

// settle moves PendingOrders[idx] into history.
func (s *State) settle(idx int) {
	order := s.PendingOrders[idx]
	s.Transactions = append(s.Transactions, order)
	s.PendingOrders = append(s.PendingOrders[:idx], s.PendingOrders[idx+1:]...)
}
