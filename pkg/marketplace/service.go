// Package marketplace is the application layer over the ledger: every
// operation mutates the in-memory State, saves the snapshot and appends the
// matching event to the journal.
package marketplace

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/marketplace/pkg/db"
	"github.com/shunichi-ikebuchi/marketplace/pkg/market"
	"github.com/shunichi-ikebuchi/marketplace/pkg/seed"
	"github.com/shunichi-ikebuchi/marketplace/pkg/store"
)

// Snapshotter loads and saves the whole State.
type Snapshotter interface {
	Load() (*market.State, store.Report, error)
	Save(state *market.State) error
}

// Recorder appends ledger events.
type Recorder interface {
	Record(events ...db.Event) ([]db.Event, error)
}

// Service serializes access to one State.
type Service struct {
	mu      sync.Mutex
	state   *market.State
	store   Snapshotter
	journal Recorder
}

// New wraps an already loaded state. journal may be nil.
func New(state *market.State, snapshots Snapshotter, journal Recorder) *Service {
	return &Service{state: state, store: snapshots, journal: journal}
}

// Open loads the state from snapshots and wraps it.
func Open(snapshots Snapshotter, journal Recorder) (*Service, store.Report, error) {
	state, report, err := snapshots.Load()
	if err != nil {
		return nil, report, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if !report.Found {
		slog.Info("No prior data, starting empty")
	} else if !report.Clean() {
		slog.Warn("Snapshot loaded with dropped rows",
			"duplicates", report.DuplicateRows,
			"invalid", report.InvalidRows,
			"dropped_sellers", report.DroppedSellers,
			"orphan_items", report.OrphanItems,
			"orphan_line_items", report.OrphanLineItems,
			"unlinked_buyers", report.UnlinkedBuyers,
		)
	}
	return New(state, snapshots, journal), report, nil
}

// View runs fn with read access to the state. fn must not keep references
// past its return.
func (s *Service) View(fn func(state *market.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Save writes the current state without recording an event.
func (s *Service) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

func (s *Service) save() error {
	if err := s.store.Save(s.state); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// commit saves the mutated state and journals events. The state is not
// rolled back when the save fails. A journal failure is only logged since
// the snapshot is already durable.
func (s *Service) commit(events ...db.Event) error {
	if err := s.save(); err != nil {
		return err
	}
	if s.journal == nil || len(events) == 0 {
		return nil
	}
	if _, err := s.journal.Record(events...); err != nil {
		slog.Warn("Failed to journal events", "kind", events[0].Kind, "error", err)
	}
	return nil
}

// Register creates a buyer.
func (s *Service) Register(name, email, phone, address string) (*market.Buyer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.state.RegisterBuyer(name, email, phone, address)
	if err != nil {
		return nil, err
	}
	slog.Info("Registered buyer", "buyer_id", b.ID)
	return b, s.commit(db.Event{Kind: db.EventBuyerRegistered, BuyerID: b.ID, Note: b.Name})
}

// Login checks a buyer's id and name.
func (s *Service) Login(buyerID int, name string) (*market.Buyer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LoginBuyer(buyerID, name)
}

// LoginSeller checks a seller's buyer id and name.
func (s *Service) LoginSeller(buyerID int, name string) (*market.Seller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LoginSeller(buyerID, name)
}

// OpenAccount opens the buyer's bank account with an opening deposit.
func (s *Service) OpenAccount(buyerID int, deposit decimal.Decimal) (*market.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.state.OpenAccount(buyerID, deposit)
	if err != nil {
		return nil, err
	}
	if acc.IsDormant() {
		slog.Info("Account opened dormant", "buyer_id", buyerID, "balance", acc.Balance.StringFixed(2))
	}
	return acc, s.commit(db.Event{Kind: db.EventAccountOpened, BuyerID: buyerID, Amount: deposit})
}

// Deposit tops up the buyer's account and reports whether it was
// reactivated.
func (s *Service) Deposit(buyerID int, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reactivated, err := s.state.Deposit(buyerID, amount)
	if err != nil {
		return false, err
	}
	if reactivated {
		slog.Info("Account reactivated", "buyer_id", buyerID)
	}
	return reactivated, s.commit(db.Event{Kind: db.EventDeposit, BuyerID: buyerID, Amount: amount})
}

// Withdraw takes money out of the buyer's account.
func (s *Service) Withdraw(buyerID int, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.state.Withdraw(buyerID, amount); err != nil {
		return err
	}
	return s.commit(db.Event{Kind: db.EventWithdrawal, BuyerID: buyerID, Amount: amount})
}

// UpgradeToSeller opens a store for the buyer.
func (s *Service) UpgradeToSeller(buyerID int, storeName string) (*market.Seller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.state.UpgradeToSeller(buyerID, storeName)
	if err != nil {
		return nil, err
	}
	slog.Info("Upgraded to seller", "buyer_id", buyerID, "seller_id", sel.SellerID)
	return sel, s.commit(db.Event{Kind: db.EventSellerUpgraded, BuyerID: buyerID, SellerID: sel.SellerID, Note: storeName})
}

// AddItem adds an item to a seller's inventory.
func (s *Service) AddItem(sellerID int, item market.Item) error {
	return s.inventory(sellerID, func(sel *market.Seller) (string, bool, error) {
		return fmt.Sprintf("add item %d", item.ID), true, sel.AddItem(item)
	})
}

// RemoveItem removes an item from a seller's inventory.
func (s *Service) RemoveItem(sellerID, itemID int) error {
	return s.inventory(sellerID, func(sel *market.Seller) (string, bool, error) {
		return fmt.Sprintf("remove item %d", itemID), true, sel.RemoveItem(itemID)
	})
}

// UpdateItem replaces an item of a seller's inventory. An unknown item id
// changes nothing, saves nothing and reports false.
func (s *Service) UpdateItem(sellerID int, item market.Item) (bool, error) {
	var found bool
	err := s.inventory(sellerID, func(sel *market.Seller) (string, bool, error) {
		var err error
		found, err = sel.UpdateItem(item.ID, item.Name, item.Quantity, item.Price)
		return fmt.Sprintf("update item %d", item.ID), found, err
	})
	return found, err
}

// inventory runs fn on a seller and commits only when fn reports a change.
func (s *Service) inventory(sellerID int, fn func(*market.Seller) (note string, changed bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.state.FindSeller(sellerID)
	if !ok {
		return market.ErrSellerNotFound
	}
	note, changed, err := fn(sel)
	if err != nil || !changed {
		return err
	}
	return s.commit(db.Event{Kind: db.EventInventory, BuyerID: sel.BuyerID, SellerID: sellerID, Note: note})
}

// PlaceOrder creates a pending order from the picks that can be served.
func (s *Service) PlaceOrder(buyerID, sellerID int, picks []market.Pick) (*market.Transaction, []market.Rejection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, rejected, err := s.state.PlaceOrder(buyerID, sellerID, picks)
	for _, r := range rejected {
		slog.Info("Pick rejected", "buyer_id", buyerID, "item_id", r.Pick.ItemID, "quantity", r.Pick.Quantity, "reason", r.Err)
	}
	if err != nil {
		return nil, rejected, err
	}
	return order, rejected, s.commit(orderEvent(db.EventOrderPlaced, order))
}

// Pay settles a pending order.
func (s *Service) Pay(buyerID, transactionID int) (*market.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.state.Pay(buyerID, transactionID)
	if err != nil {
		return nil, err
	}
	slog.Info("Order paid", "transaction_id", order.ID, "total", order.Total.StringFixed(2))
	return order, s.commit(orderEvent(db.EventPayment, order))
}

// CancelOrder cancels a pending order and releases its reserved stock.
func (s *Service) CancelOrder(buyerID, transactionID int) (*market.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.state.CancelOrder(buyerID, transactionID)
	if err != nil {
		return nil, err
	}
	return order, s.commit(orderEvent(db.EventOrderCancelled, order))
}

// CompleteOrder marks a paid order as completed.
func (s *Service) CompleteOrder(sellerID, transactionID int) (*market.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.state.CompleteOrder(sellerID, transactionID)
	if err != nil {
		return nil, err
	}
	return order, s.commit(orderEvent(db.EventOrderCompleted, order))
}

// DeleteAccount removes a buyer with its seller profile and bank account.
// Pending orders placed by the buyer or addressed to its store are
// cancelled first and journaled as such.
func (s *Service) DeleteAccount(buyerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled, err := s.state.DeleteAccount(buyerID)
	if err != nil {
		return err
	}
	slog.Info("Deleted account", "buyer_id", buyerID, "cancelled_orders", len(cancelled))

	events := make([]db.Event, 0, len(cancelled)+1)
	for _, order := range cancelled {
		events = append(events, orderEvent(db.EventOrderCancelled, order))
	}
	events = append(events, db.Event{Kind: db.EventAccountDeleted, BuyerID: buyerID})
	return s.commit(events...)
}

// Seed applies a fixture and saves once at the end. On a fixture error
// nothing is saved, but the entries applied so far stay in memory.
func (s *Service) Seed(fixture *seed.Fixture, source string) (*seed.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := fixture.Apply(s.state)
	if err != nil {
		return result, err
	}
	events := make([]db.Event, 0, len(result.Buyers))
	for _, b := range result.Buyers {
		events = append(events, db.Event{Kind: db.EventSeeded, BuyerID: b.ID, Note: source})
	}
	return result, s.commit(events...)
}

func orderEvent(kind db.EventKind, order *market.Transaction) db.Event {
	return db.Event{
		Kind:          kind,
		BuyerID:       order.BuyerID,
		SellerID:      order.SellerID,
		TransactionID: order.ID,
		Amount:        order.Total,
		Note:          order.Status.String(),
	}
}
