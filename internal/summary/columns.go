package summary

import (
	"time"

	"github.com/JonMunkholm/vscan/internal/schema"
)

// Column headers of summary tables.
const (
	ColPeriod        = "Period"
	ColTotal         = "Total Transactions"
	ColFirst         = "First Transaction"
	ColLast          = "Last Transaction"
	ColBranchCount   = "Distinct Branches (Count)"
	ColBranchList    = "Branch List"
	ColRegisterCount = "Distinct Registers (Count)"
	ColRegisterList  = "Register List"
	ColPeakDay       = "Day with Most Transactions"
	ColLowDay        = "Day with Fewest Transactions"
	ColAmount        = "Sum of Transaction Total"
	ColPoints        = "Sum of Points"
	ColIntervals     = "Transaction Intervals (min)"
)

type roleLabels struct {
	id, otherCount, otherList string
}

var labels = map[schema.Role]roleLabels{
	schema.RoleCard: {
		id:         "Card Number",
		otherCount: "Distinct Cashiers (Count)",
		otherList:  "Cashier List",
	},
	schema.RoleCashier: {
		id:         "Cashier",
		otherCount: "Distinct Cards Handled (Count)",
		otherList:  "Card List",
	},
}

// Headers returns the summary table header for role. Optional dimension
// columns appear only when the mapping binds them, so Headers and
// EntitySummary.Row always agree for the same mapping.
func Headers(role schema.Role, m schema.Mapping, includeIntervals bool) []string {
	l := labels[role]
	h := []string{l.id, ColPeriod, ColTotal, ColFirst, ColLast}

	if m.Has(schema.RoleBranch) {
		h = append(h, ColBranchCount, ColBranchList)
	}
	if other, ok := role.Counterpart(); ok && m.Has(other) {
		h = append(h, l.otherCount, l.otherList)
	}
	if m.Has(schema.RoleRegister) {
		h = append(h, ColRegisterCount, ColRegisterList)
	}
	h = append(h, ColPeakDay, ColLowDay)
	if m.Has(schema.RoleAmount) {
		h = append(h, ColAmount)
	}
	if m.Has(schema.RolePoints) {
		h = append(h, ColPoints)
	}
	if includeIntervals {
		h = append(h, ColIntervals)
	}
	return h
}

// Row returns the cell values of s in Headers order.
func (s EntitySummary) Row() []any {
	row := []any{s.ID, s.Period, s.Count, formatTime(s.First), formatTime(s.Last)}

	for _, d := range []Distinct{s.Branches, s.Others, s.Registers} {
		if d.Present {
			row = append(row, d.Count(), d.List())
		}
	}
	row = append(row, s.PeakDay, s.LowDay)
	if s.HasAmount {
		row = append(row, s.Amount.InexactFloat64())
	}
	if s.HasPoints {
		row = append(row, s.Points.InexactFloat64())
	}
	if s.HasIntervals {
		row = append(row, s.Intervals)
	}
	return row
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}
