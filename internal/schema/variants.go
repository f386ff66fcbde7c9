package schema

// Variant describes one known export layout.
type Variant struct {
	Key   string // Unique identifier: "pos_v2"
	Label string // Display name

	// Columns lists accepted header names per role, most specific first.
	Columns map[Role][]string

	// Required roles must all be present for the variant to match as a whole.
	Required []Role

	// Priority orders whole-variant matching; higher is tried first.
	Priority int

	// Legacy marks the variant whose names are used role-by-role when no
	// variant matches as a whole.
	Legacy bool
}

// TimestampPrefixes are the compacted, case-folded name prefixes accepted
// for the timestamp role when no variant names it.
var TimestampPrefixes = []string{
	"transactiondatetime",
	"transactiondate",
	"transdate",
	"timestamp",
	"datetime",
	"date",
	"time",
}

func init() {
	// Current POS export ("new" schema).
	Register(Variant{
		Key:   "pos_v2",
		Label: "POS export v2",
		Columns: map[Role][]string{
			RoleTimestamp: {"Transaction Date Time", "Transaction DateTime"},
			RoleCard:      {"Card Number", "Card No"},
			RoleCashier:   {"Cashier Name", "Cashier ID"},
			RoleBranch:    {"Branch Name", "Branch Code"},
			RoleRegister:  {"Register No", "POS No"},
			RoleAmount:    {"Total Amount", "Net Total"},
			RolePoints:    {"Points Earned", "Loyalty Points"},
		},
		Required: []Role{RoleTimestamp, RoleCard, RoleCashier},
		Priority: 20,
	})

	// Original POS export ("old" schema).
	Register(Variant{
		Key:   "pos_v1",
		Label: "POS export v1",
		Columns: map[Role][]string{
			RoleTimestamp: {"TransactionDateTime"},
			RoleCard:      {"card_no"},
			RoleCashier:   {"cashier"},
			RoleBranch:    {"branch_code"},
			RoleRegister:  {"register_no"},
			RoleAmount:    {"trans_total"},
			RolePoints:    {"points"},
		},
		Required: []Role{RoleTimestamp, RoleCard, RoleCashier, RoleBranch, RoleRegister},
		Priority: 10,
		Legacy:   true,
	})
}
