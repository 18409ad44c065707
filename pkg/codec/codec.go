// Package codec converts marketplace collections to and from the
// pipe-delimited record files of the data directory.
//
// Every file holds one record per line with fields in a fixed column order.
// Decoders skip blank lines, lines starting with '#', rows with too few
// columns and rows whose numeric columns do not parse.
package codec

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Separator delimits the columns of a record.
const Separator = "|"

// Minimum column counts per file.
const (
	AccountColumns     = 3
	BuyerColumns       = 6
	SellerColumns      = 3
	ItemColumns        = 5
	TransactionColumns = 8
	LineItemColumns    = 5
)

// Sanitize makes a text field safe to store in a single column: line breaks
// become spaces and the separator becomes '/'.
func Sanitize(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", Separator, "/").Replace(s)
}

// Row is the columns of one decoded line.
type Row []string

// writeRow appends one record line to sb.
func writeRow(sb *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(f)
	}
	sb.WriteString("\n")
}

// SplitRows splits file content into rows of at least minColumns columns.
// It returns the rows and the number of data lines that were too short.
func SplitRows(content string, minColumns int) ([]Row, int) {
	var rows []Row
	skipped := 0

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, Separator)
		if len(cols) < minColumns {
			skipped++
			continue
		}
		rows = append(rows, cols)
	}

	return rows, skipped
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

func formatMoney(d decimal.Decimal) string {
	return d.String()
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
