package summary

import (
	"testing"
	"time"

	"github.com/JonMunkholm/vscan/internal/schema"
)

func TestPartition_Monthly(t *testing.T) {
	recs, m := load(t, legacyColumns,
		row("2024-02-01 08:00", "1", "Ann", "B1", "1", ""),
		row("2024-01-31 23:59", "1", "Ann", "B1", "1", ""),
		row("not a date", "2", "Ann", "B1", "1", ""),
		row("2024-01-05 09:00", "2", "Bob", "B1", "1", ""),
		row("2024-01-05 09:00", "3", "Bob", "B1", "1", ""),
	)

	buckets, skipped := Partition(recs, m, Monthly, time.Now())
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(buckets) != 2 {
		t.Fatalf("len(buckets) = %d, want 2", len(buckets))
	}

	jan := buckets[0]
	if jan.Label != "2024-01" {
		t.Errorf("buckets[0].Label = %q, want 2024-01", jan.Label)
	}
	if len(jan.Records) != 3 {
		t.Fatalf("January records = %d, want 3", len(jan.Records))
	}
	// Equal timestamps keep dataset order.
	if jan.Records[0].Card != "2" || jan.Records[1].Card != "3" {
		t.Errorf("January order = %s, %s, want 2, 3", jan.Records[0].Card, jan.Records[1].Card)
	}
	if buckets[1].Label != "2024-02" {
		t.Errorf("buckets[1].Label = %q, want 2024-02", buckets[1].Label)
	}
}

func TestPartition_WholeRange(t *testing.T) {
	recs, m := load(t, legacyColumns,
		row("2024-03-10 08:00", "1", "Ann", "B1", "1", ""),
		row("2024-01-05 09:00", "1", "Ann", "B1", "1", ""),
	)

	buckets, _ := Partition(recs, m, WholeRange, time.Now())
	if len(buckets) != 1 {
		t.Fatalf("len(buckets) = %d, want 1", len(buckets))
	}
	if got, want := buckets[0].Label, "2024-01_to_2024-03"; got != want {
		t.Errorf("Label = %q, want %q", got, want)
	}
	if !buckets[0].Start.Before(buckets[0].End) {
		t.Errorf("Start = %v, End = %v", buckets[0].Start, buckets[0].End)
	}
}

func TestPartition_NoTimestamp(t *testing.T) {
	recs, m := load(t, []string{"card_no", "cashier"},
		[]string{"1", "Ann"},
		[]string{"2", "Bob"},
	)
	now := time.Date(2025, 6, 30, 15, 0, 0, 0, time.UTC)

	buckets, skipped := Partition(recs, m, Monthly, now)
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(buckets) != 1 || buckets[0].Label != "2025-06-30" {
		t.Fatalf("buckets = %+v, want one bucket labeled 2025-06-30", buckets)
	}
	if len(buckets[0].Records) != 2 {
		t.Errorf("records = %d, want 2", len(buckets[0].Records))
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Monthly, false},
		{"monthly", Monthly, false},
		{"whole_range", WholeRange, false},
		{"weekly", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummarizeBucket_OmitsUnavailableDimension(t *testing.T) {
	columns := []string{"TransactionDateTime", "card_no", "branch_code", "register_no"}
	recs, m := load(t, columns,
		[]string{"2024-01-05 09:00", "1", "B1", "1"},
	)
	buckets, _ := Partition(recs, m, Monthly, time.Now())

	got := SummarizeBucket(buckets[0], m, []Dimension{
		{Role: schema.RoleCard, TopN: 20},
		{Role: schema.RoleCashier, TopN: 20},
	}, false)

	if len(got.Tables) != 1 {
		t.Fatalf("len(Tables) = %d, want 1", len(got.Tables))
	}
	if _, ok := got.Table(schema.RoleCashier); ok {
		t.Error("cashier table present without a cashier column")
	}
	cards, ok := got.Table(schema.RoleCard)
	if !ok || len(cards.Rows) != 1 {
		t.Fatalf("card table = %+v", cards)
	}
	if cards.Rows[0].Period != "2024-01" {
		t.Errorf("Period = %q, want 2024-01", cards.Rows[0].Period)
	}
}
