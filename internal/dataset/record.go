package dataset

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/vscan/internal/schema"
)

// Record is the typed view of one data row.
// Index is the row's position in the dataset and is used for stable ordering.
type Record struct {
	Index int

	Time    time.Time
	HasTime bool

	Card     string
	Cashier  string
	Branch   string
	Register string

	Amount    decimal.Decimal
	HasAmount bool
	Points    decimal.Decimal
	HasPoints bool
}

// ID returns the record's identifier for an entity or attribute role.
func (r Record) ID(role schema.Role) string {
	switch role {
	case schema.RoleCard:
		return r.Card
	case schema.RoleCashier:
		return r.Cashier
	case schema.RoleBranch:
		return r.Branch
	case schema.RoleRegister:
		return r.Register
	default:
		return ""
	}
}

// Day returns the calendar day of the record's timestamp.
func (r Record) Day() string {
	return r.Time.Format("2006-01-02")
}
