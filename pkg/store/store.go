// Package store loads the marketplace State from the record files of a data
// directory and writes it back.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shunichi-ikebuchi/marketplace/pkg/codec"
	"github.com/shunichi-ikebuchi/marketplace/pkg/flatfile"
	"github.com/shunichi-ikebuchi/marketplace/pkg/market"
	"github.com/shunichi-ikebuchi/marketplace/pkg/pathutil"
)

// Report describes what Load found and what it had to leave out.
type Report struct {
	// Found is true when at least one record file existed.
	Found bool

	// SkippedRows counts malformed or short rows per file.
	SkippedRows map[string]int

	DuplicateRows   int // rows whose id was already loaded
	InvalidRows     int // rows with a non-positive id or a negative quantity or price
	DroppedSellers  int // seller rows whose buyer is missing
	OrphanItems     int // item rows whose seller is missing
	OrphanLineItems int // line items whose transaction is missing
	UnlinkedBuyers  int // buyers flagged hasAccount without an account row
}

// Clean reports whether every row was loaded.
func (r Report) Clean() bool {
	skipped := 0
	for _, n := range r.SkippedRows {
		skipped += n
	}
	return skipped == 0 && r.DuplicateRows == 0 && r.InvalidRows == 0 && r.DroppedSellers == 0 &&
		r.OrphanItems == 0 && r.OrphanLineItems == 0 && r.UnlinkedBuyers == 0
}

func (r *Report) reject(err error) {
	if errors.Is(err, market.ErrInvalidID) || errors.Is(err, market.ErrInvalidItem) {
		r.InvalidRows++
		return
	}
	r.DuplicateRows++
}

// Store reads and writes snapshots through a flat-file repository.
type Store struct {
	repo flatfile.Repository
	opts []market.Option
}

// New creates a Store. The options are passed to every loaded State.
func New(repo flatfile.Repository, opts ...market.Option) *Store {
	return &Store{repo: repo, opts: opts}
}

// NewFileSystem creates a Store over the data directory of pathResolver.
func NewFileSystem(pathResolver *pathutil.PathResolver, opts ...market.Option) *Store {
	return New(flatfile.NewFileSystemRepository(pathResolver), opts...)
}

// Load reads every record file and rebuilds the cross references:
// accounts, then buyers (linked to their account), sellers (joined to their
// buyer), items (attached to their seller), transactions and finally their
// line items. Missing files mean "no prior data" and are not an error, and
// a missing data directory is left uncreated.
func (s *Store) Load() (*market.State, Report, error) {
	report := Report{SkippedRows: make(map[string]int)}

	if !s.repo.Exists() {
		return market.NewState(s.opts...), report, nil
	}

	unlock, err := s.repo.Lock()
	if err != nil {
		return nil, report, err
	}
	defer unlock()

	contents := make(map[string]string, len(pathutil.RecordFiles))
	for _, name := range pathutil.RecordFiles {
		content, exists, err := s.repo.ReadRecordFile(name)
		if err != nil {
			return nil, report, fmt.Errorf("failed to load %s: %w", name, err)
		}
		if exists {
			report.Found = true
		}
		contents[name] = content
	}

	state := market.NewState(s.opts...)

	accounts, skipped := codec.DecodeAccounts(contents[pathutil.AccountsFile])
	report.SkippedRows[pathutil.AccountsFile] = skipped
	for _, rec := range accounts {
		if err := state.InsertAccount(market.NewBankAccount(rec.ID, rec.Name, rec.Balance)); err != nil {
			slog.Warn("Skipping account row", "id", rec.ID, "error", err)
			report.reject(err)
		}
	}

	buyers, skipped := codec.DecodeBuyers(contents[pathutil.BuyersFile])
	report.SkippedRows[pathutil.BuyersFile] = skipped
	for _, rec := range buyers {
		b := &market.Buyer{
			ID:      rec.ID,
			Name:    rec.Name,
			Email:   rec.Email,
			Phone:   rec.Phone,
			Address: rec.Address,
		}
		if rec.HasAccount {
			if state.AccountByID(rec.ID) != nil {
				b.AccountID = rec.ID
			} else {
				report.UnlinkedBuyers++
			}
		}
		if err := state.InsertBuyer(b); err != nil {
			slog.Warn("Skipping buyer row", "id", rec.ID, "error", err)
			report.reject(err)
		}
	}

	sellers, skipped := codec.DecodeSellers(contents[pathutil.SellersFile])
	report.SkippedRows[pathutil.SellersFile] = skipped
	for _, rec := range sellers {
		if _, ok := state.FindBuyer(rec.BuyerID); !ok {
			slog.Debug("Dropping seller without buyer", "seller_id", rec.SellerID, "buyer_id", rec.BuyerID)
			report.DroppedSellers++
			continue
		}
		sel := &market.Seller{BuyerID: rec.BuyerID, SellerID: rec.SellerID, StoreName: rec.StoreName}
		if err := state.InsertSeller(sel); err != nil {
			slog.Warn("Skipping seller row", "seller_id", rec.SellerID, "error", err)
			report.reject(err)
		}
	}

	items, skipped := codec.DecodeItems(contents[pathutil.ItemsFile])
	report.SkippedRows[pathutil.ItemsFile] = skipped
	for _, rec := range items {
		sel, ok := state.FindSeller(rec.SellerID)
		if !ok {
			report.OrphanItems++
			continue
		}
		item := market.Item{ID: rec.ItemID, Name: rec.Name, Quantity: rec.Quantity, Price: rec.Price}
		if err := sel.AddItem(item); err != nil {
			slog.Warn("Skipping item row", "seller_id", rec.SellerID, "item_id", rec.ItemID, "error", err)
			report.reject(err)
		}
	}

	txs, skipped := codec.DecodeTransactions(contents[pathutil.TransactionsFile])
	report.SkippedRows[pathutil.TransactionsFile] = skipped
	for _, rec := range txs {
		t := &market.Transaction{
			ID:         rec.ID,
			BuyerID:    rec.BuyerID,
			BuyerName:  rec.BuyerName,
			SellerID:   rec.SellerID,
			SellerName: rec.SellerName,
			Total:      rec.Total,
			Status:     rec.Status,
			Date:       rec.Date,
		}
		if err := state.InsertTransaction(t); err != nil {
			slog.Warn("Skipping transaction row", "transaction_id", rec.ID, "error", err)
			report.reject(err)
		}
	}

	lines, skipped := codec.DecodeLineItems(contents[pathutil.TransactionItemsFile])
	report.SkippedRows[pathutil.TransactionItemsFile] = skipped
	for _, rec := range lines {
		t, ok := state.FindTransaction(rec.TransactionID)
		if !ok {
			report.OrphanLineItems++
			continue
		}
		t.Items = append(t.Items, market.TransactionItem{
			ItemID:       rec.ItemID,
			ItemName:     rec.ItemName,
			Quantity:     rec.Quantity,
			PricePerUnit: rec.PricePerUnit,
		})
	}

	// Files written before line items were stored only carry the total.
	for _, group := range [][]*market.Transaction{state.Transactions, state.PendingOrders} {
		for _, t := range group {
			if len(t.Items) > 0 {
				t.RecalculateTotal()
			}
		}
	}

	slog.Debug("Loaded snapshot",
		"found", report.Found,
		"buyers", len(state.Buyers),
		"sellers", len(state.Sellers),
		"accounts", len(state.Accounts),
		"transactions", len(state.Transactions),
		"pending", len(state.PendingOrders),
	)

	return state, report, nil
}

// Save overwrites every record file with the content of state. Each file
// is replaced atomically and the whole save runs under the directory lock.
// Files are independent: a failure part way leaves earlier files updated.
func (s *Store) Save(state *market.State) error {
	unlock, err := s.repo.Lock()
	if err != nil {
		return err
	}
	defer unlock()

	files := []struct {
		name    string
		content string
	}{
		{pathutil.AccountsFile, codec.EncodeAccounts(state.Accounts)},
		{pathutil.BuyersFile, codec.EncodeBuyers(state)},
		{pathutil.SellersFile, codec.EncodeSellers(state.Sellers)},
		{pathutil.ItemsFile, codec.EncodeItems(state.Sellers)},
		{pathutil.TransactionsFile, codec.EncodeTransactions(state.Transactions, state.PendingOrders)},
		{pathutil.TransactionItemsFile, codec.EncodeLineItems(state.Transactions, state.PendingOrders)},
	}

	for _, f := range files {
		if err := s.repo.ReplaceRecordFile(f.name, f.content); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}

	return nil
}
