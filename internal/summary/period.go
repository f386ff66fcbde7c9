package summary

import (
	"fmt"
	"slices"
	"time"

	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/schema"
)

// Mode selects how records are partitioned into buckets.
type Mode string

const (
	// Monthly makes one bucket per calendar month.
	Monthly Mode = "monthly"
	// WholeRange makes a single bucket spanning every dated record.
	WholeRange Mode = "whole_range"
)

// ParseMode parses a mode name. The empty string is Monthly.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", Monthly:
		return Monthly, nil
	case WholeRange:
		return WholeRange, nil
	default:
		return "", fmt.Errorf("unknown period mode %q (want %q or %q)", s, Monthly, WholeRange)
	}
}

const monthLayout = "2006-01"

// Bucket is one period partition. Records are ordered by time; records with
// equal timestamps keep dataset order.
type Bucket struct {
	Label   string
	Start   time.Time
	End     time.Time
	Records []dataset.Record
}

// Partition splits recs into buckets.
//
// Without a timestamp mapping every record lands in one bucket labeled with
// now's date. Otherwise records without a parseable timestamp cannot be
// placed; they are left out and counted in skipped. Monthly buckets are
// returned in chronological order.
func Partition(recs []dataset.Record, m schema.Mapping, mode Mode, now time.Time) (buckets []Bucket, skipped int) {
	if !m.Has(schema.RoleTimestamp) {
		if len(recs) == 0 {
			return nil, 0
		}
		return []Bucket{{Label: now.Format("2006-01-02"), Records: slices.Clone(recs)}}, 0
	}

	dated := make([]dataset.Record, 0, len(recs))
	for _, r := range recs {
		if r.HasTime {
			dated = append(dated, r)
		} else {
			skipped++
		}
	}
	if len(dated) == 0 {
		return nil, skipped
	}
	slices.SortStableFunc(dated, byTime)

	if mode == WholeRange {
		return []Bucket{newBucket(dated)}, skipped
	}

	for start := 0; start < len(dated); {
		month := dated[start].Time.Format(monthLayout)
		end := start + 1
		for end < len(dated) && dated[end].Time.Format(monthLayout) == month {
			end++
		}
		buckets = append(buckets, newBucket(dated[start:end:end]))
		start = end
	}
	return buckets, skipped
}

// newBucket builds a bucket over time-sorted records.
func newBucket(recs []dataset.Record) Bucket {
	first, last := recs[0].Time, recs[len(recs)-1].Time
	return Bucket{
		Label:   RangeLabel(first, last),
		Start:   first,
		End:     last,
		Records: recs,
	}
}

// RangeLabel names the period between two times: "2024-01" when both fall in
// the same month, "2024-01_to_2024-03" otherwise.
func RangeLabel(first, last time.Time) string {
	a, b := first.Format(monthLayout), last.Format(monthLayout)
	if a == b {
		return a
	}
	return a + "_to_" + b
}

// Dimension is one entity role to summarize and its result bound.
type Dimension struct {
	Role schema.Role
	TopN int
}

// Table is the summary of one dimension within a bucket.
type Table struct {
	Role    schema.Role
	Headers []string
	Rows    []EntitySummary
}

// BucketSummary is the summarized form of one bucket.
type BucketSummary struct {
	Bucket Bucket
	Tables []Table
}

// Table returns the table for role, if it was summarized.
func (b BucketSummary) Table(role schema.Role) (Table, bool) {
	for _, t := range b.Tables {
		if t.Role == role {
			return t, true
		}
	}
	return Table{}, false
}

// SummarizeBucket runs Summarize for each dimension independently. A
// dimension the mapping cannot serve is omitted rather than reported.
func SummarizeBucket(b Bucket, m schema.Mapping, dims []Dimension, includeIntervals bool) BucketSummary {
	out := BucketSummary{Bucket: b}
	for _, d := range dims {
		if !m.Has(d.Role) || !m.Has(schema.RoleTimestamp) {
			continue
		}
		out.Tables = append(out.Tables, Table{
			Role:    d.Role,
			Headers: Headers(d.Role, m, includeIntervals),
			Rows: Summarize(b.Records, m, d.Role, Options{
				TopN:             d.TopN,
				Period:           b.Label,
				IncludeIntervals: includeIntervals,
			}),
		})
	}
	return out
}
