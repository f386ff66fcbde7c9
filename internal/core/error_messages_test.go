package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/vscan/internal/crypt"
	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/schema"
	"github.com/JonMunkholm/vscan/internal/summary"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "schema unavailable",
			err:      fmt.Errorf("lookup: %w", &schema.UnavailableError{Role: schema.RoleCashier}),
			wantCode: "SCH001",
		},
		{
			name:     "entity not found",
			err:      &summary.EntityNotFoundError{Role: schema.RoleCard, ID: "1234"},
			wantCode: "ENT001",
		},
		{
			name:     "encryption exhausted",
			err:      &crypt.ExhaustedError{Artifact: "top_transaction_2024-01.xlsx"},
			wantCode: "ENC001",
		},
		{
			name:     "wrong password",
			err:      crypt.ErrBadPassword,
			wantCode: "ENC002",
		},
		{
			name:     "unsupported format",
			err:      fmt.Errorf("%w: .pdf", dataset.ErrUnsupportedFormat),
			wantCode: "FILE002",
		},
		{
			name:     "empty input",
			err:      dataset.ErrEmpty,
			wantCode: "FILE003",
		},
		{
			name:     "too large",
			err:      dataset.ErrTooLarge,
			wantCode: "FILE001",
		},
		{
			name:     "busy",
			err:      ErrTooManyRuns,
			wantCode: "RUN001",
		},
		{
			name:     "run log failure beats generic workbook match",
			err:      errors.New("record run: open run log: permission denied"),
			wantCode: "RPT002",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("ERROR: relation does not exist (SQLSTATE 42P01)"),
			wantCode: "DB002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := &summary.EntityNotFoundError{Role: schema.RoleCard, ID: "1234"}
	result := FormatUserError(err)

	expected := "No transactions found for the requested entity (Code: ENT001). Check the card number or cashier name"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil error is not user facing")
	}
	if !IsUserFacing(ErrTooManyRuns) {
		t.Error("busy error should be user facing")
	}
	if IsUserFacing(errors.New("random internal error xyz")) {
		t.Error("unknown error should not be user facing")
	}
}
