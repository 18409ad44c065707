package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

// Today formats t as YYYY-MM-DD.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// InLastNDays reports whether date falls in the n days ending at ref,
// ref included. Dates compare lexically, which is chronological for
// YYYY-MM-DD.
func InLastNDays(date string, n int, ref string) bool {
	from, err := AddDays(ref, -(n - 1))
	if err != nil {
		return false
	}
	return date >= from && date <= ref
}

// SalesInLastDays sums the totals of the seller's paid or completed orders
// dated within the n days ending at ref. An empty ref means today.
func (s *State) SalesInLastDays(sellerID, n int, ref string) decimal.Decimal {
	if ref == "" {
		ref = s.Today()
	}
	total := decimal.Zero
	for _, t := range s.Transactions {
		if t.SellerID != sellerID {
			continue
		}
		if t.Status != StatusPaid && t.Status != StatusCompleted {
			continue
		}
		if InLastNDays(t.Date, n, ref) {
			total = total.Add(t.Total)
		}
	}
	return total
}
