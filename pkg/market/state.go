package market

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// State is the whole marketplace snapshot: every collection that is loaded
// from and saved to the data directory, plus the id counters.
type State struct {
	Buyers        []*Buyer
	Sellers       []*Seller
	Accounts      []*BankAccount
	Transactions  []*Transaction // settled history
	PendingOrders []*Transaction

	nextBuyerID       int
	nextSellerID      int
	nextTransactionID int

	now func() time.Time
}

// Option configures a State.
type Option func(*State)

// WithClock sets the clock used to date new orders.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

// NewState returns an empty state whose counters all start at 1.
func NewState(opts ...Option) *State {
	s := &State{
		nextBuyerID:       1,
		nextSellerID:      1,
		nextTransactionID: 1,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextBuyerID returns the id the next registered buyer will get.
func (s *State) NextBuyerID() int { return s.nextBuyerID }

// NextSellerID returns the id the next upgraded seller will get.
func (s *State) NextSellerID() int { return s.nextSellerID }

// NextTransactionID returns the id the next placed order will get.
func (s *State) NextTransactionID() int { return s.nextTransactionID }

// Today returns the state's current date as YYYY-MM-DD.
func (s *State) Today() string {
	return Today(s.now())
}

// InsertAccount adds an existing account, e.g. one read from disk.
func (s *State) InsertAccount(acc *BankAccount) error {
	if s.AccountByID(acc.ID) != nil {
		return fmt.Errorf("account %d: %w", acc.ID, ErrDuplicateID)
	}
	s.Accounts = append(s.Accounts, acc)
	return nil
}

// InsertBuyer adds an existing buyer and advances the buyer counter past
// its id. A set AccountID must refer to a known account.
func (s *State) InsertBuyer(b *Buyer) error {
	if b.ID <= 0 {
		return fmt.Errorf("buyer id %d: %w", b.ID, ErrInvalidID)
	}
	if _, ok := s.FindBuyer(b.ID); ok {
		return fmt.Errorf("buyer %d: %w", b.ID, ErrDuplicateID)
	}
	if b.HasAccount() && s.AccountByID(b.AccountID) == nil {
		return fmt.Errorf("buyer %d: %w", b.ID, ErrNoAccount)
	}
	s.Buyers = append(s.Buyers, b)
	if b.ID >= s.nextBuyerID {
		s.nextBuyerID = b.ID + 1
	}
	return nil
}

// InsertSeller adds an existing seller and advances the seller counter.
// The underlying buyer must already be present.
func (s *State) InsertSeller(sel *Seller) error {
	if sel.SellerID <= 0 {
		return fmt.Errorf("seller id %d: %w", sel.SellerID, ErrInvalidID)
	}
	if _, ok := s.FindBuyer(sel.BuyerID); !ok {
		return fmt.Errorf("seller %d: %w", sel.SellerID, ErrBuyerNotFound)
	}
	if _, ok := s.FindSeller(sel.SellerID); ok {
		return fmt.Errorf("seller %d: %w", sel.SellerID, ErrDuplicateID)
	}
	if _, ok := s.SellerForBuyer(sel.BuyerID); ok {
		return fmt.Errorf("buyer %d: %w", sel.BuyerID, ErrAlreadySeller)
	}
	s.Sellers = append(s.Sellers, sel)
	if sel.SellerID >= s.nextSellerID {
		s.nextSellerID = sel.SellerID + 1
	}
	return nil
}

// InsertTransaction adds an existing transaction to pending orders or to
// history depending on its status, and advances the transaction counter.
// The buyer and seller counters are also moved past the ids the transaction
// refers to, so a deleted buyer's id is never handed out again while orders
// still name it.
func (s *State) InsertTransaction(t *Transaction) error {
	if t.ID <= 0 {
		return fmt.Errorf("transaction id %d: %w", t.ID, ErrInvalidID)
	}
	if _, ok := s.FindTransaction(t.ID); ok {
		return fmt.Errorf("transaction %d: %w", t.ID, ErrDuplicateID)
	}
	if t.Status == StatusPending {
		s.PendingOrders = append(s.PendingOrders, t)
	} else {
		s.Transactions = append(s.Transactions, t)
	}
	if t.ID >= s.nextTransactionID {
		s.nextTransactionID = t.ID + 1
	}
	if t.BuyerID >= s.nextBuyerID {
		s.nextBuyerID = t.BuyerID + 1
	}
	if t.SellerID >= s.nextSellerID {
		s.nextSellerID = t.SellerID + 1
	}
	return nil
}

// FindBuyer returns the buyer with the given id.
func (s *State) FindBuyer(id int) (*Buyer, bool) {
	for _, b := range s.Buyers {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// FindSeller returns the seller with the given seller id.
func (s *State) FindSeller(sellerID int) (*Seller, bool) {
	for _, sel := range s.Sellers {
		if sel.SellerID == sellerID {
			return sel, true
		}
	}
	return nil, false
}

// SellerForBuyer returns the seller profile of a buyer, if it has one.
func (s *State) SellerForBuyer(buyerID int) (*Seller, bool) {
	for _, sel := range s.Sellers {
		if sel.BuyerID == buyerID {
			return sel, true
		}
	}
	return nil, false
}

// AccountByID returns the account with the given id, or nil.
func (s *State) AccountByID(id int) *BankAccount {
	for _, acc := range s.Accounts {
		if acc.ID == id {
			return acc
		}
	}
	return nil
}

// AccountFor resolves a buyer's account reference.
func (s *State) AccountFor(b *Buyer) (*BankAccount, bool) {
	if b == nil || !b.HasAccount() {
		return nil, false
	}
	acc := s.AccountByID(b.AccountID)
	return acc, acc != nil
}

// SellerAccount resolves the account of the buyer behind a seller.
func (s *State) SellerAccount(sel *Seller) (*BankAccount, bool) {
	b, ok := s.FindBuyer(sel.BuyerID)
	if !ok {
		return nil, false
	}
	return s.AccountFor(b)
}

// SellerProfile returns the buyer record behind a seller.
func (s *State) SellerProfile(sel *Seller) (*Buyer, bool) {
	return s.FindBuyer(sel.BuyerID)
}

// LoginBuyer finds a buyer by id and exact name.
func (s *State) LoginBuyer(id int, name string) (*Buyer, bool) {
	b, ok := s.FindBuyer(id)
	if !ok || b.Name != name {
		return nil, false
	}
	return b, true
}

// LoginSeller finds a seller by its buyer id and the buyer's exact name.
func (s *State) LoginSeller(buyerID int, name string) (*Seller, bool) {
	if _, ok := s.LoginBuyer(buyerID, name); !ok {
		return nil, false
	}
	return s.SellerForBuyer(buyerID)
}

// RegisterBuyer creates a buyer with the next free id.
func (s *State) RegisterBuyer(name, email, phone, address string) (*Buyer, error) {
	if !IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !IsValidPhone(phone) {
		return nil, ErrInvalidPhone
	}
	b := &Buyer{
		ID:      s.nextBuyerID,
		Name:    name,
		Email:   email,
		Phone:   phone,
		Address: address,
	}
	if err := s.InsertBuyer(b); err != nil {
		return nil, err
	}
	return b, nil
}

// OpenAccount creates the buyer's bank account with an opening deposit and
// links it to the buyer. The deposit may be zero or negative, which leaves
// the account dormant.
func (s *State) OpenAccount(buyerID int, deposit decimal.Decimal) (*BankAccount, error) {
	b, ok := s.FindBuyer(buyerID)
	if !ok {
		return nil, ErrBuyerNotFound
	}
	if b.HasAccount() || s.AccountByID(b.ID) != nil {
		return nil, ErrAccountExists
	}
	acc := NewBankAccount(b.ID, b.Name, deposit)
	s.Accounts = append(s.Accounts, acc)
	b.AccountID = acc.ID
	return acc, nil
}

// Deposit tops up a buyer's account. It returns whether the account was
// reactivated by the deposit.
func (s *State) Deposit(buyerID int, amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, ErrNonPositiveAmount
	}
	acc, err := s.buyerAccount(buyerID)
	if err != nil {
		return false, err
	}
	return acc.Deposit(amount), nil
}

// Withdraw takes amount out of a buyer's account.
func (s *State) Withdraw(buyerID int, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	acc, err := s.buyerAccount(buyerID)
	if err != nil {
		return err
	}
	return acc.Withdraw(amount)
}

// UpgradeToSeller opens a store for a buyer that owns a bank account.
// Dormancy is not checked here.
func (s *State) UpgradeToSeller(buyerID int, storeName string) (*Seller, error) {
	b, ok := s.FindBuyer(buyerID)
	if !ok {
		return nil, ErrBuyerNotFound
	}
	if _, ok := s.SellerForBuyer(buyerID); ok {
		return nil, ErrAlreadySeller
	}
	if _, ok := s.AccountFor(b); !ok {
		return nil, ErrNoAccount
	}
	sel := &Seller{
		BuyerID:   b.ID,
		SellerID:  s.nextSellerID,
		StoreName: storeName,
	}
	if err := s.InsertSeller(sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// DeleteAccount removes a buyer together with its seller profile and bank
// account. Pending orders placed by the buyer, or addressed to its store,
// are cancelled first so their reserved stock is released; they are
// returned. Settled orders are kept.
func (s *State) DeleteAccount(buyerID int) ([]*Transaction, error) {
	if _, ok := s.FindBuyer(buyerID); !ok {
		return nil, ErrBuyerNotFound
	}

	sellerID := 0
	if sel, ok := s.SellerForBuyer(buyerID); ok {
		sellerID = sel.SellerID
	}

	var cancelled []*Transaction
	for _, t := range slices.Clone(s.PendingOrders) {
		if t.BuyerID != buyerID && (sellerID == 0 || t.SellerID != sellerID) {
			continue
		}
		order, err := s.CancelOrder(t.BuyerID, t.ID)
		if err != nil {
			return cancelled, err
		}
		cancelled = append(cancelled, order)
	}

	s.Buyers = filter(s.Buyers, func(b *Buyer) bool { return b.ID != buyerID })
	s.Sellers = filter(s.Sellers, func(sel *Seller) bool { return sel.BuyerID != buyerID })
	s.Accounts = filter(s.Accounts, func(acc *BankAccount) bool { return acc.ID != buyerID })
	return cancelled, nil
}

func (s *State) buyerAccount(buyerID int) (*BankAccount, error) {
	b, ok := s.FindBuyer(buyerID)
	if !ok {
		return nil, ErrBuyerNotFound
	}
	acc, ok := s.AccountFor(b)
	if !ok {
		return nil, ErrNoAccount
	}
	return acc, nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
