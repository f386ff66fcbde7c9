package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader produces the comparison key for a column name.
//
// Exports produced by different tools disagree on case, full-width
// characters and stray Excel quoting, so names are NFKC-normalized and
// case-folded before matching. The original name is kept in the Mapping.
func NormalizeHeader(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "=\"") && strings.HasSuffix(name, "\"") {
		name = name[2 : len(name)-1]
	}
	name = strings.Trim(name, "\"'")
	name = norm.NFKC.String(name)
	// cases.Caser is stateful; a fresh one per call keeps this goroutine-safe.
	return cases.Fold().String(strings.TrimSpace(name))
}

// compactHeader removes separators so "Transaction Date", "transaction_date"
// and "TransactionDate" compare equal during the timestamp prefix scan.
func compactHeader(name string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "", ".", "").Replace(NormalizeHeader(name))
}
