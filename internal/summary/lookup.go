package summary

import (
	"errors"
	"fmt"
	"slices"

	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/schema"
)

// ErrEntityNotFound is matched by every *EntityNotFoundError.
var ErrEntityNotFound = errors.New("entity not found")

// EntityNotFoundError names the entity a lookup could not find.
type EntityNotFoundError struct {
	Role schema.Role
	ID   string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("no transactions found for %s %q", e.Role, e.ID)
}

func (e *EntityNotFoundError) Is(target error) bool {
	return target == ErrEntityNotFound
}

// Entity is the result of a single-entity lookup.
type Entity struct {
	Summary EntitySummary
	Records []dataset.Record // ordered by time, undated records last
	Lags    []Lag            // parallel to Records
}

// Lookup summarizes every record of one entity. The identifier is compared
// after the same cleanup applied to dataset cells, so "1234.0" finds "1234".
func Lookup(recs []dataset.Record, m schema.Mapping, role schema.Role, id string, includeIntervals bool) (*Entity, error) {
	if !role.IsEntity() {
		return nil, fmt.Errorf("role %q is not an entity", role)
	}
	if err := m.Require(role); err != nil {
		return nil, err
	}

	want := dataset.NormalizeID(id)
	var matched []dataset.Record
	for _, r := range recs {
		if want != "" && r.ID(role) == want {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil, &EntityNotFoundError{Role: role, ID: want}
	}

	slices.SortStableFunc(matched, func(a, b dataset.Record) int {
		switch {
		case a.HasTime && !b.HasTime:
			return -1
		case !a.HasTime && b.HasTime:
			return 1
		default:
			return byTime(a, b)
		}
	})

	s := summarizeEntity(want, matched, m, role, Options{IncludeIntervals: includeIntervals})
	if !s.First.IsZero() {
		s.Period = RangeLabel(s.First, s.Last)
	}

	return &Entity{
		Summary: s,
		Records: matched,
		Lags:    Lags(matched, role),
	}, nil
}
