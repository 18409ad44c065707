// Package db keeps the ledger journal: an append-only SQLite record of every
// balance and order event applied to the marketplace.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- One row per applied ledger event. seq keeps insertion order.
CREATE TABLE IF NOT EXISTS ledger_events (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,           -- uuid
    kind TEXT NOT NULL,
    buyer_id INTEGER NOT NULL DEFAULT 0,
    seller_id INTEGER NOT NULL DEFAULT 0,
    transaction_id INTEGER NOT NULL DEFAULT 0,
    amount TEXT NOT NULL DEFAULT '0',  -- decimal string
    note TEXT NOT NULL DEFAULT '',
    recorded_at TEXT NOT NULL          -- RFC 3339
);

CREATE INDEX IF NOT EXISTS idx_ledger_events_buyer
    ON ledger_events(buyer_id);

CREATE INDEX IF NOT EXISTS idx_ledger_events_transaction
    ON ledger_events(transaction_id);

CREATE TABLE IF NOT EXISTS journal_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
