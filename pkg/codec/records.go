package codec

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/marketplace/pkg/market"
)

// AccountRecord is a row of accounts.txt: id|name|balance.
type AccountRecord struct {
	ID      int
	Name    string
	Balance decimal.Decimal
}

// BuyerRecord is a row of buyers.txt: id|name|email|phone|address|hasAccount.
type BuyerRecord struct {
	ID         int
	Name       string
	Email      string
	Phone      string
	Address    string
	HasAccount bool
}

// SellerRecord is a row of sellers.txt: buyerId|sellerId|storeName.
type SellerRecord struct {
	BuyerID   int
	SellerID  int
	StoreName string
}

// ItemRecord is a row of items.txt: sellerId|itemId|name|quantity|price.
type ItemRecord struct {
	SellerID int
	ItemID   int
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// TransactionRecord is a row of transactions.txt:
// transactionId|buyerId|buyerName|sellerId|sellerName|totalAmount|statusCode|date.
type TransactionRecord struct {
	ID         int
	BuyerID    int
	BuyerName  string
	SellerID   int
	SellerName string
	Total      decimal.Decimal
	Status     market.TransactionStatus
	Date       string
}

// LineItemRecord is a row of transaction_items.txt:
// transactionId|itemId|itemName|quantity|pricePerUnit.
type LineItemRecord struct {
	TransactionID int
	ItemID        int
	ItemName      string
	Quantity      int
	PricePerUnit  decimal.Decimal
}

// EncodeAccounts renders accounts.txt.
func EncodeAccounts(accounts []*market.BankAccount) string {
	var sb strings.Builder
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		writeRow(&sb, itoa(acc.ID), Sanitize(acc.Name), formatMoney(acc.Balance))
	}
	return sb.String()
}

// DecodeAccounts parses accounts.txt. The int result counts skipped rows.
func DecodeAccounts(content string) ([]AccountRecord, int) {
	rows, skipped := SplitRows(content, AccountColumns)
	records := make([]AccountRecord, 0, len(rows))
	for _, row := range rows {
		id, err := atoi(row[0])
		if err != nil {
			skipped++
			continue
		}
		balance, err := parseMoney(row[2])
		if err != nil {
			skipped++
			continue
		}
		records = append(records, AccountRecord{ID: id, Name: row[1], Balance: balance})
	}
	return records, skipped
}

// EncodeBuyers renders buyers.txt. hasAccount is 1 only when the account
// reference resolves in the given state.
func EncodeBuyers(state *market.State) string {
	var sb strings.Builder
	for _, b := range state.Buyers {
		_, linked := state.AccountFor(b)
		writeRow(&sb,
			itoa(b.ID),
			Sanitize(b.Name),
			Sanitize(b.Email),
			Sanitize(b.Phone),
			Sanitize(b.Address),
			boolFlag(linked),
		)
	}
	return sb.String()
}

// DecodeBuyers parses buyers.txt.
func DecodeBuyers(content string) ([]BuyerRecord, int) {
	rows, skipped := SplitRows(content, BuyerColumns)
	records := make([]BuyerRecord, 0, len(rows))
	for _, row := range rows {
		id, err := atoi(row[0])
		if err != nil {
			skipped++
			continue
		}
		hasAccount, err := atoi(row[5])
		if err != nil {
			skipped++
			continue
		}
		records = append(records, BuyerRecord{
			ID:         id,
			Name:       row[1],
			Email:      row[2],
			Phone:      row[3],
			Address:    row[4],
			HasAccount: hasAccount != 0,
		})
	}
	return records, skipped
}

// EncodeSellers renders sellers.txt.
func EncodeSellers(sellers []*market.Seller) string {
	var sb strings.Builder
	for _, s := range sellers {
		writeRow(&sb, itoa(s.BuyerID), itoa(s.SellerID), Sanitize(s.StoreName))
	}
	return sb.String()
}

// DecodeSellers parses sellers.txt.
func DecodeSellers(content string) ([]SellerRecord, int) {
	rows, skipped := SplitRows(content, SellerColumns)
	records := make([]SellerRecord, 0, len(rows))
	for _, row := range rows {
		buyerID, err := atoi(row[0])
		if err != nil {
			skipped++
			continue
		}
		sellerID, err := atoi(row[1])
		if err != nil {
			skipped++
			continue
		}
		records = append(records, SellerRecord{BuyerID: buyerID, SellerID: sellerID, StoreName: row[2]})
	}
	return records, skipped
}

// EncodeItems renders items.txt, seller by seller in inventory order.
func EncodeItems(sellers []*market.Seller) string {
	var sb strings.Builder
	for _, s := range sellers {
		for _, item := range s.Items {
			writeRow(&sb,
				itoa(s.SellerID),
				itoa(item.ID),
				Sanitize(item.Name),
				itoa(item.Quantity),
				formatMoney(item.Price),
			)
		}
	}
	return sb.String()
}

// DecodeItems parses items.txt.
func DecodeItems(content string) ([]ItemRecord, int) {
	rows, skipped := SplitRows(content, ItemColumns)
	records := make([]ItemRecord, 0, len(rows))
	for _, row := range rows {
		sellerID, err1 := atoi(row[0])
		itemID, err2 := atoi(row[1])
		qty, err3 := atoi(row[3])
		price, err4 := parseMoney(row[4])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			skipped++
			continue
		}
		records = append(records, ItemRecord{
			SellerID: sellerID,
			ItemID:   itemID,
			Name:     row[2],
			Quantity: qty,
			Price:    price,
		})
	}
	return records, skipped
}

// EncodeTransactions renders transactions.txt. Settled history comes first,
// then pending orders; the status column tells them apart on load.
func EncodeTransactions(history, pending []*market.Transaction) string {
	var sb strings.Builder
	for _, group := range [][]*market.Transaction{history, pending} {
		for _, t := range group {
			writeRow(&sb,
				itoa(t.ID),
				itoa(t.BuyerID),
				Sanitize(t.BuyerName),
				itoa(t.SellerID),
				Sanitize(t.SellerName),
				formatMoney(t.Total),
				itoa(int(t.Status)),
				Sanitize(t.Date),
			)
		}
	}
	return sb.String()
}

// DecodeTransactions parses transactions.txt. Rows with an unknown status
// code are skipped.
func DecodeTransactions(content string) ([]TransactionRecord, int) {
	rows, skipped := SplitRows(content, TransactionColumns)
	records := make([]TransactionRecord, 0, len(rows))
	for _, row := range rows {
		id, err1 := atoi(row[0])
		buyerID, err2 := atoi(row[1])
		sellerID, err3 := atoi(row[3])
		total, err4 := parseMoney(row[5])
		status, err5 := atoi(row[6])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil ||
			!market.TransactionStatus(status).Valid() {
			skipped++
			continue
		}
		records = append(records, TransactionRecord{
			ID:         id,
			BuyerID:    buyerID,
			BuyerName:  row[2],
			SellerID:   sellerID,
			SellerName: row[4],
			Total:      total,
			Status:     market.TransactionStatus(status),
			Date:       row[7],
		})
	}
	return records, skipped
}

// EncodeLineItems renders transaction_items.txt for history and pending orders.
func EncodeLineItems(history, pending []*market.Transaction) string {
	var sb strings.Builder
	for _, group := range [][]*market.Transaction{history, pending} {
		for _, t := range group {
			for _, line := range t.Items {
				writeRow(&sb,
					itoa(t.ID),
					itoa(line.ItemID),
					Sanitize(line.ItemName),
					itoa(line.Quantity),
					formatMoney(line.PricePerUnit),
				)
			}
		}
	}
	return sb.String()
}

// DecodeLineItems parses transaction_items.txt.
func DecodeLineItems(content string) ([]LineItemRecord, int) {
	rows, skipped := SplitRows(content, LineItemColumns)
	records := make([]LineItemRecord, 0, len(rows))
	for _, row := range rows {
		txID, err1 := atoi(row[0])
		itemID, err2 := atoi(row[1])
		qty, err3 := atoi(row[3])
		price, err4 := parseMoney(row[4])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			skipped++
			continue
		}
		records = append(records, LineItemRecord{
			TransactionID: txID,
			ItemID:        itemID,
			ItemName:      row[2],
			Quantity:      qty,
			PricePerUnit:  price,
		})
	}
	return records, skipped
}
