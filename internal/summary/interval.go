package summary

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/schema"
)

// NoIntervals is the narrative for an entity with no day holding two or
// more transactions.
const NoIntervals = "N/A"

// Lag is the gap to the previous transaction of the same entity.
type Lag struct {
	Minutes float64
	Valid   bool
}

// Lags returns one Lag per record, in the order of recs. Records are grouped
// by their identifier for role and ordered by time within each group. The
// first record of each entity, and records without a timestamp or identifier,
// get an invalid Lag.
func Lags(recs []dataset.Record, role schema.Role) []Lag {
	out := make([]Lag, len(recs))

	groups := make(map[string][]int)
	for i, r := range recs {
		id := r.ID(role)
		if id == "" || !r.HasTime {
			continue
		}
		groups[id] = append(groups[id], i)
	}

	for _, idx := range groups {
		slices.SortStableFunc(idx, func(a, b int) int {
			return recs[a].Time.Compare(recs[b].Time)
		})
		for k := 1; k < len(idx); k++ {
			prev, cur := recs[idx[k-1]], recs[idx[k]]
			out[idx[k]] = Lag{Minutes: cur.Time.Sub(prev.Time).Minutes(), Valid: true}
		}
	}
	return out
}

// Narrative renders the per-day gaps of one entity's records, one line per
// day with at least two dated transactions:
//
//	2024-01-05 09:00: 15 > 25
//
// Gaps are whole minutes, truncated. Days are in chronological order.
func Narrative(recs []dataset.Record) string {
	dated := make([]dataset.Record, 0, len(recs))
	for _, r := range recs {
		if r.HasTime {
			dated = append(dated, r)
		}
	}
	slices.SortStableFunc(dated, byTime)

	var lines []string
	for start := 0; start < len(dated); {
		end := start + 1
		for end < len(dated) && dated[end].Day() == dated[start].Day() {
			end++
		}
		if end-start >= 2 {
			gaps := make([]string, 0, end-start-1)
			for k := start + 1; k < end; k++ {
				gap := int(dated[k].Time.Sub(dated[k-1].Time).Minutes())
				gaps = append(gaps, strconv.Itoa(gap))
			}
			lines = append(lines, dated[start].Time.Format("2006-01-02 15:04")+": "+strings.Join(gaps, " > "))
		}
		start = end
	}

	if len(lines) == 0 {
		return NoIntervals
	}
	return strings.Join(lines, "\n")
}

func byTime(a, b dataset.Record) int {
	if c := a.Time.Compare(b.Time); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}
