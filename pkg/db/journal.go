package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventKind names the ledger operation an event records.
type EventKind string

const (
	EventBuyerRegistered EventKind = "buyer_registered"
	EventAccountOpened   EventKind = "account_opened"
	EventAccountDeleted  EventKind = "account_deleted"
	EventDeposit         EventKind = "deposit"
	EventWithdrawal      EventKind = "withdrawal"
	EventSellerUpgraded  EventKind = "seller_upgraded"
	EventInventory       EventKind = "inventory"
	EventOrderPlaced     EventKind = "order_placed"
	EventPayment         EventKind = "payment"
	EventOrderCancelled  EventKind = "order_cancelled"
	EventOrderCompleted  EventKind = "order_completed"
	EventSeeded          EventKind = "seeded"
)

// Event is one journal row. Zero ids mean "not applicable".
type Event struct {
	ID            string
	Kind          EventKind
	BuyerID       int
	SellerID      int
	TransactionID int
	Amount        decimal.Decimal
	Note          string
	RecordedAt    time.Time
}

// Journal appends and queries ledger events.
type Journal struct {
	conn *Connection
	now  func() time.Time
}

// NewJournal creates a new Journal instance.
func NewJournal(conn *Connection) *Journal {
	return &Journal{conn: conn, now: time.Now}
}

const insertEvent = `
	INSERT INTO ledger_events (id, kind, buyer_id, seller_id, transaction_id, amount, note, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const selectEvents = `
	SELECT id, kind, buyer_id, seller_id, transaction_id, amount, note, recorded_at
	FROM ledger_events
`

// Record appends events in a single database transaction. Missing ids and
// timestamps are filled in; the completed events are returned.
func (j *Journal) Record(events ...Event) ([]Event, error) {
	out := make([]Event, len(events))
	for i, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.RecordedAt.IsZero() {
			e.RecordedAt = j.now().UTC()
		}
		out[i] = e
	}

	err := j.conn.Transaction(func(tx *sql.Tx) error {
		for _, e := range out {
			if _, err := tx.Exec(insertEvent,
				e.ID,
				string(e.Kind),
				e.BuyerID,
				e.SellerID,
				e.TransactionID,
				e.Amount.String(),
				e.Note,
				e.RecordedAt.Format(time.RFC3339Nano),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record events: %w", err)
	}

	return out, nil
}

// EventsForBuyer returns the buyer's events in the order they were recorded.
func (j *Journal) EventsForBuyer(buyerID int) ([]Event, error) {
	return j.query(selectEvents+` WHERE buyer_id = ? ORDER BY seq`, buyerID)
}

// EventsForTransaction returns the events of one order.
func (j *Journal) EventsForTransaction(transactionID int) ([]Event, error) {
	return j.query(selectEvents+` WHERE transaction_id = ? ORDER BY seq`, transactionID)
}

// Recent returns up to limit of the latest events, newest first.
func (j *Journal) Recent(limit int) ([]Event, error) {
	return j.query(selectEvents+` ORDER BY seq DESC LIMIT ?`, limit)
}

func (j *Journal) query(query string, args ...any) ([]Event, error) {
	rows, err := j.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e          Event
			kind       string
			amount     string
			recordedAt string
		)
		if err := rows.Scan(
			&e.ID,
			&kind,
			&e.BuyerID,
			&e.SellerID,
			&e.TransactionID,
			&amount,
			&e.Note,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		e.Kind = EventKind(kind)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("event %s has invalid amount %q: %w", e.ID, amount, err)
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("event %s has invalid timestamp %q: %w", e.ID, recordedAt, err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Stats represents journal statistics.
type Stats struct {
	TotalEvents int
	Payments    int
	Deposits    int
	PaidVolume  decimal.Decimal
	LastEvent   sql.NullString
}

// GetStats retrieves journal statistics.
func (j *Journal) GetStats() (*Stats, error) {
	stats := Stats{PaidVolume: decimal.Zero}

	err := j.conn.QueryRow(`SELECT COUNT(*) FROM ledger_events`).Scan(&stats.TotalEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to get event count: %w", err)
	}

	err = j.conn.QueryRow(`SELECT COUNT(*) FROM ledger_events WHERE kind = ?`, string(EventDeposit)).Scan(&stats.Deposits)
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit count: %w", err)
	}

	// Amounts are decimal strings, so the sum is done here rather than in SQL.
	rows, err := j.conn.Query(`SELECT amount FROM ledger_events WHERE kind = ?`, string(EventPayment))
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid payment amount %q: %w", amount, err)
		}
		stats.Payments++
		stats.PaidVolume = stats.PaidVolume.Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = j.conn.QueryRow(`SELECT MAX(recorded_at) FROM ledger_events`).Scan(&stats.LastEvent)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get last event time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value. A missing key yields "".
func (j *Journal) GetMetadata(key string) (string, error) {
	var value string
	err := j.conn.QueryRow(`SELECT value FROM journal_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (j *Journal) SetMetadata(key, value string) error {
	query := `
		INSERT INTO journal_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := j.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
