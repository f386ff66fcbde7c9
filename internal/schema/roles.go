// Package schema resolves the columns of a loaded transaction export to the
// canonical roles the aggregation engine works with.
//
// Exports from the point-of-sale platform come in more than one layout. Each
// known layout is registered as a [Variant]; [Resolve] inspects a dataset's
// header and returns an immutable [Mapping] that every later stage consults
// instead of comparing column names itself.
package schema

import "fmt"

// Role is a canonical field of a transaction record.
type Role string

const (
	RoleTimestamp Role = "timestamp"
	RoleCard      Role = "card"
	RoleCashier   Role = "cashier"
	RoleBranch    Role = "branch"
	RoleRegister  Role = "register"
	RoleAmount    Role = "amount"
	RolePoints    Role = "points"
)

// Roles lists every role in report column order.
var Roles = []Role{
	RoleTimestamp,
	RoleCard,
	RoleCashier,
	RoleBranch,
	RoleRegister,
	RoleAmount,
	RolePoints,
}

// ParseRole converts a user-supplied name ("card", "cashier", ...) to a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// IsEntity reports whether the role can be used as a grouping key.
func (r Role) IsEntity() bool {
	return r == RoleCard || r == RoleCashier
}

// Counterpart returns the other entity role: cashier for card and card for
// cashier. Non-entity roles have no counterpart.
func (r Role) Counterpart() (Role, bool) {
	switch r {
	case RoleCard:
		return RoleCashier, true
	case RoleCashier:
		return RoleCard, true
	default:
		return "", false
	}
}

// UnavailableError reports that a role could not be resolved for a dataset.
// Callers treat it as "feature unavailable", never as a fatal condition.
type UnavailableError struct {
	Role Role
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("schema unavailable: no column for role %q", e.Role)
}
