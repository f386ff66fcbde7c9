package summary

import (
	"testing"

	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/schema"
)

// legacyColumns is the pos_v1 header with an amount column.
var legacyColumns = []string{"TransactionDateTime", "card_no", "cashier", "branch_code", "register_no", "trans_total"}

func load(t *testing.T, columns []string, rows ...[]string) ([]dataset.Record, schema.Mapping) {
	t.Helper()
	ds := dataset.New("test.xlsx", columns, rows)
	m := ds.Mapping()
	return ds.Records(m), m
}

// row builds a legacy-layout row.
func row(ts, card, cashier, branch, register, amount string) []string {
	return []string{ts, card, cashier, branch, register, amount}
}
