package summary

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/vscan/internal/schema"
)

func TestLookup(t *testing.T) {
	recs, m := load(t, legacyColumns,
		row("2024-02-01 08:00", "1234", "Ann", "B1", "1", "3"),
		row("2024-01-05 09:00", "1234", "Ann", "B1", "1", "2"),
		row("2024-01-05 09:00", "9999", "Bob", "B1", "1", "1"),
		row("2024-01-05 09:20", "1234", "Bob", "B2", "1", "1"),
	)

	got, err := Lookup(recs, m, schema.RoleCard, "1234.0", true)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.Summary.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Summary.Count)
	}
	if got.Summary.Period != "2024-01_to_2024-02" {
		t.Errorf("Period = %q", got.Summary.Period)
	}
	if got.Summary.Amount.String() != "6" {
		t.Errorf("Amount = %s, want 6", got.Summary.Amount)
	}
	if got.Records[0].Time.Day() != 5 {
		t.Errorf("Records not ordered by time: first = %v", got.Records[0].Time)
	}
	if got.Lags[0].Valid {
		t.Error("first lag should be invalid")
	}
	if !got.Lags[1].Valid || got.Lags[1].Minutes != 20 {
		t.Errorf("Lags[1] = %+v, want 20 minutes", got.Lags[1])
	}
}

func TestLookup_NotFound(t *testing.T) {
	recs, m := load(t, legacyColumns, row("2024-01-05 09:00", "1", "Ann", "B1", "1", ""))

	_, err := Lookup(recs, m, schema.RoleCashier, "Zed", false)
	if !errors.Is(err, ErrEntityNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrEntityNotFound", err)
	}
	var nf *EntityNotFoundError
	if !errors.As(err, &nf) || nf.ID != "Zed" || nf.Role != schema.RoleCashier {
		t.Errorf("error = %#v", err)
	}
}

func TestLookup_RoleUnavailable(t *testing.T) {
	recs, m := load(t, []string{"TransactionDateTime", "card_no"}, []string{"2024-01-05 09:00", "1"})

	_, err := Lookup(recs, m, schema.RoleCashier, "Ann", false)
	var ue *schema.UnavailableError
	if !errors.As(err, &ue) {
		t.Errorf("Lookup() error = %v, want *schema.UnavailableError", err)
	}
}
