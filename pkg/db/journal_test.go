package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), ".journal", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	j := NewJournal(conn)
	j.now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return j
}

func TestRecordFillsIDsAndTimestamps(t *testing.T) {
	j := openJournal(t)

	events, err := j.Record(
		Event{Kind: EventDeposit, BuyerID: 1, Amount: decimal.NewFromInt(20)},
		Event{Kind: EventPayment, BuyerID: 1, SellerID: 2, TransactionID: 5, Amount: decimal.RequireFromString("12.5")},
	)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.Equal(t, 2025, events[0].RecordedAt.Year())

	got, err := j.EventsForBuyer(1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, EventDeposit, got[0].Kind)
	assert.Equal(t, EventPayment, got[1].Kind)
	assert.True(t, got[1].Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, events[1].ID, got[1].ID)
	assert.True(t, got[1].RecordedAt.Equal(events[1].RecordedAt))
}

func TestRecordRejectsDuplicateID(t *testing.T) {
	j := openJournal(t)

	_, err := j.Record(Event{ID: "fixed", Kind: EventSeeded})
	require.NoError(t, err)

	_, err = j.Record(
		Event{Kind: EventDeposit, BuyerID: 3, Amount: decimal.NewFromInt(1)},
		Event{ID: "fixed", Kind: EventSeeded},
	)
	assert.Error(t, err)

	events, err := j.EventsForBuyer(3)
	require.NoError(t, err)
	assert.Empty(t, events, "a failed batch is rolled back")
}

func TestQueries(t *testing.T) {
	j := openJournal(t)

	_, err := j.Record(
		Event{Kind: EventOrderPlaced, BuyerID: 1, SellerID: 1, TransactionID: 1, Amount: decimal.NewFromInt(10)},
		Event{Kind: EventOrderPlaced, BuyerID: 2, SellerID: 1, TransactionID: 2, Amount: decimal.NewFromInt(4)},
		Event{Kind: EventOrderCancelled, BuyerID: 1, SellerID: 1, TransactionID: 1},
	)
	require.NoError(t, err)

	tests := []struct {
		name     string
		fetch    func() ([]Event, error)
		expected []EventKind
	}{
		{"by transaction", func() ([]Event, error) { return j.EventsForTransaction(1) }, []EventKind{EventOrderPlaced, EventOrderCancelled}},
		{"by buyer", func() ([]Event, error) { return j.EventsForBuyer(2) }, []EventKind{EventOrderPlaced}},
		{"recent", func() ([]Event, error) { return j.Recent(2) }, []EventKind{EventOrderCancelled, EventOrderPlaced}},
		{"unknown buyer", func() ([]Event, error) { return j.EventsForBuyer(99) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := tt.fetch()
			require.NoError(t, err)
			var kinds []EventKind
			for _, e := range events {
				kinds = append(kinds, e.Kind)
			}
			assert.Equal(t, tt.expected, kinds)
		})
	}
}

func TestGetStats(t *testing.T) {
	j := openJournal(t)

	stats, err := j.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalEvents)
	assert.False(t, stats.LastEvent.Valid)
	assert.True(t, stats.PaidVolume.IsZero())

	_, err = j.Record(
		Event{Kind: EventDeposit, BuyerID: 1, Amount: decimal.NewFromInt(50)},
		Event{Kind: EventPayment, BuyerID: 1, TransactionID: 1, Amount: decimal.RequireFromString("10.25")},
		Event{Kind: EventPayment, BuyerID: 1, TransactionID: 2, Amount: decimal.RequireFromString("0.75")},
	)
	require.NoError(t, err)

	stats, err = j.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 1, stats.Deposits)
	assert.Equal(t, 2, stats.Payments)
	assert.True(t, stats.PaidVolume.Equal(decimal.NewFromInt(11)), "got %s", stats.PaidVolume)
	assert.True(t, stats.LastEvent.Valid)
}

func TestMetadata(t *testing.T) {
	j := openJournal(t)

	value, err := j.GetMetadata("last_save")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, j.SetMetadata("last_save", "2025-03-14"))
	require.NoError(t, j.SetMetadata("last_save", "2025-03-15"))

	value, err = j.GetMetadata("last_save")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", value)
}
