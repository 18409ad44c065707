// Package market holds the marketplace entity model and the ledger operations
// that mutate it: accounts, seller upgrades, inventory, orders and settlement.
//
// Nothing in this package touches the filesystem. Persistence lives in
// pkg/store; the operations here only change the in-memory State.
package market

import (
	"github.com/shopspring/decimal"
)

// NoAccount is the Buyer.AccountID value for a buyer without a bank account.
const NoAccount = 0

// BankAccount is a buyer's balance. Its ID is the owning buyer's ID.
type BankAccount struct {
	ID      int
	Name    string
	Balance decimal.Decimal
}

// Buyer is a registered marketplace user.
type Buyer struct {
	ID      int
	Name    string
	Email   string
	Phone   string
	Address string

	// AccountID is a foreign key into State.Accounts, NoAccount when unset.
	AccountID int
}

// HasAccount reports whether the buyer is linked to a bank account.
func (b *Buyer) HasAccount() bool {
	return b.AccountID != NoAccount
}

// Seller is a buyer that opened a store. Personal details are read from the
// buyer with the same BuyerID.
type Seller struct {
	BuyerID   int
	SellerID  int
	StoreName string
	Items     []Item
}

// Item is a line of a seller's inventory.
type Item struct {
	ID       int
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// TransactionStatus is the lifecycle state of a Transaction.
// The numeric values are the status codes written to transactions.txt.
type TransactionStatus int

const (
	StatusPending TransactionStatus = iota
	StatusPaid
	StatusCompleted
	StatusCancelled
)

// String returns the status name.
func (s TransactionStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusPaid:
		return "PAID"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	return s >= StatusPending && s <= StatusCancelled
}

// TransactionItem is a line of an order, copied from the live item when the
// order was placed.
type TransactionItem struct {
	ItemID       int
	ItemName     string
	Quantity     int
	PricePerUnit decimal.Decimal
}

// TotalPrice returns Quantity * PricePerUnit.
func (ti TransactionItem) TotalPrice() decimal.Decimal {
	return ti.PricePerUnit.Mul(decimal.NewFromInt(int64(ti.Quantity)))
}

// Transaction is an order between one buyer and one seller.
type Transaction struct {
	ID         int
	BuyerID    int
	BuyerName  string
	SellerID   int
	SellerName string
	Items      []TransactionItem
	Total      decimal.Decimal
	Status     TransactionStatus
	Date       string // YYYY-MM-DD
}

// AddItem appends a line and recomputes the total.
func (t *Transaction) AddItem(item TransactionItem) {
	t.Items = append(t.Items, item)
	t.RecalculateTotal()
}

// RecalculateTotal sets Total to the sum of the line totals.
func (t *Transaction) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.TotalPrice())
	}
	t.Total = total
}
