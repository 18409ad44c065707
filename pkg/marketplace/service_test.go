package marketplace

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/marketplace/pkg/db"
	"github.com/shunichi-ikebuchi/marketplace/pkg/market"
	"github.com/shunichi-ikebuchi/marketplace/pkg/pathutil"
	"github.com/shunichi-ikebuchi/marketplace/pkg/seed"
	"github.com/shunichi-ikebuchi/marketplace/pkg/store"
)

type fakeStore struct {
	state   *market.State
	saves   int
	saveErr error
}

func (f *fakeStore) Load() (*market.State, store.Report, error) {
	if f.state == nil {
		return market.NewState(), store.Report{}, nil
	}
	return f.state, store.Report{Found: true}, nil
}

func (f *fakeStore) Save(*market.State) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	return nil
}

type fakeJournal struct {
	events []db.Event
	err    error
}

func (f *fakeJournal) Record(events ...db.Event) ([]db.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.events = append(f.events, events...)
	return events, nil
}

func (f *fakeJournal) kinds() []db.EventKind {
	var out []db.EventKind
	for _, e := range f.events {
		out = append(out, e.Kind)
	}
	return out
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newService returns a service holding Alice (buyer 1, $50) and Bob
// (buyer 2, $0, seller 1 with item 7 "Widget" x10 at $5).
func newService(t *testing.T) (*Service, *fakeStore, *fakeJournal) {
	t.Helper()
	snapshots := &fakeStore{}
	journal := &fakeJournal{}
	svc := New(market.NewState(market.WithClock(fixedClock)), snapshots, journal)

	alice, err := svc.Register("Alice", "alice@example.com", "5551234", "1 Main St")
	require.NoError(t, err)
	_, err = svc.OpenAccount(alice.ID, dec("50"))
	require.NoError(t, err)

	bob, err := svc.Register("Bob", "bob@example.com", "5555678", "2 Side St")
	require.NoError(t, err)
	_, err = svc.OpenAccount(bob.ID, decimal.Zero)
	require.NoError(t, err)
	shop, err := svc.UpgradeToSeller(bob.ID, "Bob's Shop")
	require.NoError(t, err)
	require.NoError(t, svc.AddItem(shop.SellerID, market.Item{ID: 7, Name: "Widget", Quantity: 10, Price: dec("5")}))

	snapshots.saves = 0
	journal.events = nil
	return svc, snapshots, journal
}

func TestOpenEmpty(t *testing.T) {
	svc, report, err := Open(&fakeStore{}, nil)
	require.NoError(t, err)
	assert.False(t, report.Found)

	b, err := svc.Register("Carol", "c@example.com", "1", "x")
	require.NoError(t, err)
	assert.Equal(t, 1, b.ID)
}

func TestPurchaseFlow(t *testing.T) {
	svc, snapshots, journal := newService(t)

	order, rejected, err := svc.PlaceOrder(1, 1, []market.Pick{{ItemID: 7, Quantity: 2}, {ItemID: 99, Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0].Err, market.ErrItemNotFound)
	assert.True(t, order.Total.Equal(dec("10")))

	paid, err := svc.Pay(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, market.StatusPaid, paid.Status)

	reactivated, err := svc.Deposit(2, dec("1"))
	require.NoError(t, err)
	assert.False(t, reactivated, "seller was credited by the payment")

	completed, err := svc.CompleteOrder(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, market.StatusCompleted, completed.Status)

	assert.Equal(t, 4, snapshots.saves)
	assert.Equal(t, []db.EventKind{db.EventOrderPlaced, db.EventPayment, db.EventDeposit, db.EventOrderCompleted}, journal.kinds())
	assert.True(t, journal.events[1].Amount.Equal(dec("10")))
	assert.Equal(t, order.ID, journal.events[1].TransactionID)

	svc.View(func(state *market.State) {
		alice, _ := state.AccountFor(state.Buyers[0])
		bob, _ := state.AccountFor(state.Buyers[1])
		assert.True(t, alice.Balance.Equal(dec("40")))
		assert.True(t, bob.Balance.Equal(dec("11")))
	})
}

func TestRejectedOperationsAreNotSaved(t *testing.T) {
	svc, snapshots, journal := newService(t)

	tests := []struct {
		name     string
		run      func() error
		expected error
	}{
		{"dormant payer", func() error {
			order, _, err := svc.PlaceOrder(2, 1, []market.Pick{{ItemID: 7, Quantity: 1}})
			if err != nil {
				return err
			}
			snapshots.saves = 0
			journal.events = nil
			_, err = svc.Pay(2, order.ID)
			return err
		}, market.ErrAccountDormant},
		{"empty order", func() error {
			_, _, err := svc.PlaceOrder(1, 1, []market.Pick{{ItemID: 7, Quantity: 0}})
			return err
		}, market.ErrEmptyOrder},
		{"non-positive deposit", func() error {
			_, err := svc.Deposit(1, dec("-5"))
			return err
		}, market.ErrNonPositiveAmount},
		{"overdraw", func() error {
			return svc.Withdraw(1, dec("51"))
		}, market.ErrInsufficientFunds},
		{"unknown seller", func() error {
			return svc.RemoveItem(42, 7)
		}, market.ErrSellerNotFound},
		{"second upgrade", func() error {
			_, err := svc.UpgradeToSeller(2, "Again")
			return err
		}, market.ErrAlreadySeller},
		{"negative item quantity", func() error {
			_, err := svc.UpdateItem(1, market.Item{ID: 7, Name: "Widget", Quantity: -1, Price: dec("5")})
			return err
		}, market.ErrInvalidItem},
		{"negative item price", func() error {
			_, err := svc.UpdateItem(1, market.Item{ID: 7, Name: "Widget", Quantity: 1, Price: dec("-5")})
			return err
		}, market.ErrInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots.saves = 0
			journal.events = nil

			err := tt.run()
			assert.ErrorIs(t, err, tt.expected)
			assert.Zero(t, snapshots.saves)
			assert.Empty(t, journal.events)
		})
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	svc, snapshots, journal := newService(t)
	snapshots.saveErr = errors.New("disk full")

	_, err := svc.Deposit(1, dec("5"))
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, journal.events)

	svc.View(func(state *market.State) {
		acc, _ := state.AccountFor(state.Buyers[0])
		assert.True(t, acc.Balance.Equal(dec("55")))
	})
}

func TestJournalFailureIsNotFatal(t *testing.T) {
	svc, snapshots, journal := newService(t)
	journal.err = errors.New("journal offline")

	_, err := svc.Deposit(1, dec("5"))
	require.NoError(t, err)
	assert.Equal(t, 1, snapshots.saves)
}

func TestCancelReleasesStock(t *testing.T) {
	svc, _, journal := newService(t)

	order, _, err := svc.PlaceOrder(1, 1, []market.Pick{{ItemID: 7, Quantity: 4}})
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(1, order.ID)
	require.NoError(t, err)
	assert.Equal(t, market.StatusCancelled, cancelled.Status)
	assert.Equal(t, []db.EventKind{db.EventOrderPlaced, db.EventOrderCancelled}, journal.kinds())

	svc.View(func(state *market.State) {
		sel, _ := state.FindSeller(1)
		item, _ := sel.FindItem(7)
		assert.Equal(t, 10, item.Quantity)
	})
}

func TestInventory(t *testing.T) {
	svc, snapshots, journal := newService(t)

	found, err := svc.UpdateItem(1, market.Item{ID: 7, Name: "Widget v2", Quantity: 3, Price: dec("6")})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, snapshots.saves)
	assert.Equal(t, []db.EventKind{db.EventInventory}, journal.kinds())

	found, err = svc.UpdateItem(1, market.Item{ID: 8, Name: "Ghost"})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, snapshots.saves, "unknown item is not saved")
	assert.Len(t, journal.events, 1, "unknown item is not journaled")

	assert.ErrorIs(t, svc.RemoveItem(1, 8), market.ErrItemNotFound)
	require.NoError(t, svc.RemoveItem(1, 7))

	svc.View(func(state *market.State) {
		sel, _ := state.FindSeller(1)
		assert.Empty(t, sel.Items)
	})
}

func TestLoginAndDelete(t *testing.T) {
	svc, _, _ := newService(t)

	_, ok := svc.Login(1, "Alice")
	assert.True(t, ok)
	_, ok = svc.Login(1, "alice")
	assert.False(t, ok)

	sel, ok := svc.LoginSeller(2, "Bob")
	require.True(t, ok)
	assert.Equal(t, 1, sel.SellerID)

	require.NoError(t, svc.DeleteAccount(2))
	_, ok = svc.LoginSeller(2, "Bob")
	assert.False(t, ok)
	assert.ErrorIs(t, svc.DeleteAccount(2), market.ErrBuyerNotFound)
}

func TestDeleteAccountCancelsPendingOrders(t *testing.T) {
	svc, _, journal := newService(t)

	carol, err := svc.Register("Carol", "carol@example.com", "5550000", "3 Hill St")
	require.NoError(t, err)
	order, _, err := svc.PlaceOrder(carol.ID, 1, []market.Pick{{ItemID: 7, Quantity: 4}})
	require.NoError(t, err)
	journal.events = nil

	require.NoError(t, svc.DeleteAccount(carol.ID))
	assert.Equal(t, []db.EventKind{db.EventOrderCancelled, db.EventAccountDeleted}, journal.kinds())
	assert.Equal(t, order.ID, journal.events[0].TransactionID)

	svc.View(func(state *market.State) {
		assert.Empty(t, state.PendingOrders)
		sel, _ := state.FindSeller(1)
		item, _ := sel.FindItem(7)
		assert.Equal(t, 10, item.Quantity)
	})
}

func TestSeed(t *testing.T) {
	svc, snapshots, journal := newService(t)

	fixture, err := seed.Parse([]byte("buyers:\n  - {name: Dan, email: d@x, phone: '9', address: y, account: '3'}\n"))
	require.NoError(t, err)

	result, err := svc.Seed(fixture, "fixture.yaml")
	require.NoError(t, err)
	require.Len(t, result.Buyers, 1)
	assert.Equal(t, 3, result.Buyers[0].ID)
	assert.Equal(t, 1, snapshots.saves)
	assert.Equal(t, []db.EventKind{db.EventSeeded}, journal.kinds())
}

func TestSummarize(t *testing.T) {
	svc, _, _ := newService(t)

	order, _, err := svc.PlaceOrder(1, 1, []market.Pick{{ItemID: 7, Quantity: 3}})
	require.NoError(t, err)
	_, err = svc.Pay(1, order.ID)
	require.NoError(t, err)
	_, _, err = svc.PlaceOrder(1, 1, []market.Pick{{ItemID: 7, Quantity: 1}})
	require.NoError(t, err)

	sum := svc.Summarize(7)
	assert.Equal(t, 2, sum.Buyers)
	assert.Equal(t, 1, sum.Sellers)
	assert.Equal(t, 2, sum.Accounts)
	assert.Zero(t, sum.DormantAccounts)
	assert.Equal(t, 1, sum.Pending)
	assert.Equal(t, 1, sum.Settled)
	assert.True(t, sum.TotalBalance.Equal(dec("50")))
	require.Len(t, sum.RecentSales, 1)
	assert.True(t, sum.RecentSales[0].Sales.Equal(dec("15")))
}

func TestServiceOverFileStoreAndJournal(t *testing.T) {
	dir := t.TempDir()
	paths := pathutil.New(pathutil.Config{DataDir: filepath.Join(dir, "database")})

	conn, err := db.Open(paths.GetJournalPath())
	require.NoError(t, err)
	defer conn.Close()
	journal := db.NewJournal(conn)

	snapshots := store.NewFileSystem(paths, market.WithClock(fixedClock))
	svc, _, err := Open(snapshots, journal)
	require.NoError(t, err)

	b, err := svc.Register("Alice", "alice@example.com", "5551234", "1 Main St")
	require.NoError(t, err)
	_, err = svc.OpenAccount(b.ID, dec("0"))
	require.NoError(t, err)
	reactivated, err := svc.Deposit(b.ID, dec("25.5"))
	require.NoError(t, err)
	assert.True(t, reactivated)

	reopened, report, err := Open(snapshots, journal)
	require.NoError(t, err)
	assert.True(t, report.Found)
	reopened.View(func(state *market.State) {
		acc, ok := state.AccountFor(state.Buyers[0])
		require.True(t, ok)
		assert.True(t, acc.Balance.Equal(dec("25.5")))
	})

	events, err := journal.EventsForBuyer(b.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, db.EventDeposit, events[2].Kind)
}
