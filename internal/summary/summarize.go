package summary

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/schema"
)

// NoDay is written in place of a peak or low day when no record is dated.
const NoDay = "N/A"

// TimeLayout is the format of first/last transaction cells.
const TimeLayout = "2006-01-02 15:04:05"

// Options control one Summarize call.
type Options struct {
	// TopN bounds the number of entities returned. Zero or less keeps all.
	TopN int

	// Period labels every summary row.
	Period string

	// IncludeIntervals attaches the per-day narrative.
	IncludeIntervals bool
}

// Distinct is the set of unique values of an optional dimension.
// Present is false when the dataset has no column for the dimension.
type Distinct struct {
	Present bool
	Values  []string
}

// Count returns the number of unique values.
func (d Distinct) Count() int { return len(d.Values) }

// List returns the values joined for display.
func (d Distinct) List() string { return strings.Join(d.Values, ", ") }

// EntitySummary is one ranked row for one entity in one bucket.
type EntitySummary struct {
	Role   schema.Role
	ID     string
	Period string
	Count  int

	// First and Last are zero when no record of the entity is dated.
	First time.Time
	Last  time.Time

	Branches  Distinct
	Others    Distinct // cashiers when summarizing cards and vice versa
	Registers Distinct

	PeakDay string
	LowDay  string

	HasAmount bool
	Amount    decimal.Decimal
	HasPoints bool
	Points    decimal.Decimal

	HasIntervals bool
	Intervals    string
}

// Summarize ranks the entities of recs by transaction count and aggregates
// the top opts.TopN of them.
//
// Ranking is by count descending; ties keep the entity whose first record
// comes earliest in the source dataset. Records with a blank identifier are
// ignored. The result is empty when the mapping lacks the entity role or the
// timestamp; that means "nothing to summarize", not failure.
func Summarize(recs []dataset.Record, m schema.Mapping, role schema.Role, opts Options) []EntitySummary {
	if !role.IsEntity() || !m.Has(role) || !m.Has(schema.RoleTimestamp) {
		return nil
	}

	type group struct {
		id    string
		first int
		recs  []dataset.Record
	}
	var groups []*group
	byID := make(map[string]*group)
	for _, r := range recs {
		id := r.ID(role)
		if id == "" {
			continue
		}
		g, ok := byID[id]
		if !ok {
			g = &group{id: id, first: r.Index}
			byID[id] = g
			groups = append(groups, g)
		}
		g.first = min(g.first, r.Index)
		g.recs = append(g.recs, r)
	}

	slices.SortStableFunc(groups, func(a, b *group) int {
		if c := cmp.Compare(len(b.recs), len(a.recs)); c != 0 {
			return c
		}
		return cmp.Compare(a.first, b.first)
	})
	if opts.TopN > 0 && len(groups) > opts.TopN {
		groups = groups[:opts.TopN]
	}

	out := make([]EntitySummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, summarizeEntity(g.id, g.recs, m, role, opts))
	}
	return out
}

// summarizeEntity aggregates the records of a single entity.
func summarizeEntity(id string, recs []dataset.Record, m schema.Mapping, role schema.Role, opts Options) EntitySummary {
	s := EntitySummary{
		Role:   role,
		ID:     id,
		Period: opts.Period,
		Count:  len(recs),
	}

	dayCounts := make(map[string]int)
	for _, r := range recs {
		if !r.HasTime {
			continue
		}
		if s.First.IsZero() || r.Time.Before(s.First) {
			s.First = r.Time
		}
		if s.Last.IsZero() || r.Time.After(s.Last) {
			s.Last = r.Time
		}
		dayCounts[r.Day()]++
	}
	s.PeakDay, s.LowDay = extremeDays(dayCounts)

	s.Branches = distinct(recs, m, schema.RoleBranch)
	s.Registers = distinct(recs, m, schema.RoleRegister)
	if other, ok := role.Counterpart(); ok {
		s.Others = distinct(recs, m, other)
	}

	if m.Has(schema.RoleAmount) {
		s.HasAmount = true
		for _, r := range recs {
			if r.HasAmount {
				s.Amount = s.Amount.Add(r.Amount)
			}
		}
	}
	if m.Has(schema.RolePoints) {
		s.HasPoints = true
		for _, r := range recs {
			if r.HasPoints {
				s.Points = s.Points.Add(r.Points)
			}
		}
	}

	if opts.IncludeIntervals {
		s.HasIntervals = true
		s.Intervals = Narrative(recs)
	}
	return s
}

// extremeDays returns the busiest and quietest day formatted "<date> (<n>)".
// Ties go to the earliest day.
func extremeDays(counts map[string]int) (peak, low string) {
	if len(counts) == 0 {
		return NoDay, NoDay
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	slices.Sort(days)

	peakDay, lowDay := days[0], days[0]
	for _, d := range days[1:] {
		if counts[d] > counts[peakDay] {
			peakDay = d
		}
		if counts[d] < counts[lowDay] {
			lowDay = d
		}
	}
	return fmt.Sprintf("%s (%d)", peakDay, counts[peakDay]), fmt.Sprintf("%s (%d)", lowDay, counts[lowDay])
}

func distinct(recs []dataset.Record, m schema.Mapping, role schema.Role) Distinct {
	if !m.Has(role) {
		return Distinct{}
	}
	seen := make(map[string]struct{})
	for _, r := range recs {
		if v := r.ID(role); v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	slices.Sort(values)
	return Distinct{Present: true, Values: values}
}
