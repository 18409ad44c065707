package market

import (
	"github.com/shopspring/decimal"
)

// NewBankAccount creates an account with the given opening balance.
// A balance <= 0 yields a dormant account, which is allowed.
func NewBankAccount(id int, name string, balance decimal.Decimal) *BankAccount {
	return &BankAccount{ID: id, Name: name, Balance: balance}
}

// IsDormant reports whether the balance is zero or negative.
func (a *BankAccount) IsDormant() bool {
	return !a.Balance.IsPositive()
}

// Deposit adds amount to the balance. Callers validate amount > 0.
// It returns true when the deposit reactivated a dormant account.
func (a *BankAccount) Deposit(amount decimal.Decimal) bool {
	wasDormant := a.IsDormant()
	a.Balance = a.Balance.Add(amount)
	return wasDormant && !a.IsDormant()
}

// Withdraw subtracts amount from the balance, or returns
// ErrInsufficientFunds and leaves the balance untouched.
func (a *BankAccount) Withdraw(amount decimal.Decimal) error {
	if amount.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// SetBalance overwrites the balance without any guard.
func (a *BankAccount) SetBalance(amount decimal.Decimal) {
	a.Balance = amount
}
