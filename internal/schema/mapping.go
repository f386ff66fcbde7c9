package schema

import (
	"fmt"
	"strings"
)

// FallbackVariant is reported by [Mapping.Variant] when no registered variant
// matched as a whole and roles were bound one by one.
const FallbackVariant = "fallback"

// Mapping is the resolved binding of roles to the columns of one dataset.
// It is produced once by [Resolve] and is safe to share between goroutines;
// there are no exported mutators.
type Mapping struct {
	variant  string
	bindings map[Role]binding
}

type binding struct {
	column string
	index  int
}

// Has reports whether the role is bound to a column.
func (m Mapping) Has(r Role) bool {
	_, ok := m.bindings[r]
	return ok
}

// Column returns the dataset column name bound to a role.
func (m Mapping) Column(r Role) (string, bool) {
	b, ok := m.bindings[r]
	return b.column, ok
}

// Index returns the position of the bound column in the dataset header.
func (m Mapping) Index(r Role) (int, bool) {
	b, ok := m.bindings[r]
	if !ok {
		return -1, false
	}
	return b.index, true
}

// Require returns an *UnavailableError when the role is not bound.
func (m Mapping) Require(r Role) error {
	if !m.Has(r) {
		return &UnavailableError{Role: r}
	}
	return nil
}

// Variant returns the key of the matched variant, FallbackVariant, or ""
// when nothing at all could be resolved.
func (m Mapping) Variant() string {
	return m.variant
}

// Roles returns the bound roles in canonical order.
func (m Mapping) Roles() []Role {
	var out []Role
	for _, r := range Roles {
		if m.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Missing returns the unbound roles in canonical order.
func (m Mapping) Missing() []Role {
	var out []Role
	for _, r := range Roles {
		if !m.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m Mapping) String() string {
	parts := make([]string, 0, len(m.bindings))
	for _, r := range m.Roles() {
		parts = append(parts, fmt.Sprintf("%s=%q", r, m.bindings[r].column))
	}
	return fmt.Sprintf("Mapping{variant: %q, %s}", m.variant, strings.Join(parts, ", "))
}

// Resolve binds roles to the given header.
//
// Resolution order:
//  1. the first registered variant (by priority) whose required roles are all
//     present is used for every role it names;
//  2. otherwise each role is looked up by the legacy variant's names;
//  3. if the timestamp is still unbound, the first column whose compacted name
//     starts with one of TimestampPrefixes is used.
//
// Resolve never fails. Roles it cannot bind are simply absent.
func Resolve(columns []string) Mapping {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		key := NormalizeHeader(c)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	m := Mapping{bindings: make(map[Role]binding)}

	for _, v := range All() {
		if !v.matches(index) {
			continue
		}
		m.variant = v.Key
		for _, r := range Roles {
			if i, ok := v.lookup(r, index); ok {
				m.bindings[r] = binding{column: columns[i], index: i}
			}
		}
		return m
	}

	if v, ok := legacy(); ok {
		for _, r := range Roles {
			if i, ok := v.lookup(r, index); ok {
				m.bindings[r] = binding{column: columns[i], index: i}
			}
		}
	}

	if !m.Has(RoleTimestamp) {
		if i, ok := scanTimestamp(columns); ok {
			m.bindings[RoleTimestamp] = binding{column: columns[i], index: i}
		}
	}

	if len(m.bindings) > 0 {
		m.variant = FallbackVariant
	}
	return m
}

// matches reports whether all required roles of the variant are present.
func (v Variant) matches(index map[string]int) bool {
	if len(v.Required) == 0 {
		return false
	}
	for _, r := range v.Required {
		if _, ok := v.lookup(r, index); !ok {
			return false
		}
	}
	return true
}

// lookup finds the first accepted name for the role in the header index.
func (v Variant) lookup(r Role, index map[string]int) (int, bool) {
	for _, name := range v.Columns[r] {
		if i, ok := index[NormalizeHeader(name)]; ok {
			return i, true
		}
	}
	return -1, false
}

func scanTimestamp(columns []string) (int, bool) {
	for i, c := range columns {
		key := compactHeader(c)
		for _, prefix := range TimestampPrefixes {
			if strings.HasPrefix(key, prefix) {
				return i, true
			}
		}
	}
	return -1, false
}
