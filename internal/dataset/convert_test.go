package dataset

import (
	"testing"
	"time"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple string unchanged", input: "hello", want: "hello"},
		{name: "empty string", input: "", want: ""},
		{name: "surrounded by whitespace", input: "  hello  ", want: "hello"},
		{name: "Excel formula with quotes", input: `="0012345"`, want: "0012345"},
		{name: "bare equals sign", input: "=SUM(A1)", want: "SUM(A1)"},
		{name: "double quoted", input: `"hello"`, want: "hello"},
		{name: "single quoted", input: "'hello'", want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1234", "1234"},
		{"1234.0", "1234"},
		{"1234.00", "1234"},
		{"1234.5", "1234.5"},
		{`="0001234"`, "0001234"},
		{" C-17 ", "C-17"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeID(tt.input); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		{
			name:      "ISO with seconds",
			input:     "2024-01-05 09:15:30",
			wantValid: true,
			want:      time.Date(2024, 1, 5, 9, 15, 30, 0, time.UTC),
		},
		{
			name:      "ISO T separator",
			input:     "2024-01-05T09:15:00",
			wantValid: true,
			want:      time.Date(2024, 1, 5, 9, 15, 0, 0, time.UTC),
		},
		{
			name:      "ISO without seconds",
			input:     "2024-01-05 09:15",
			wantValid: true,
			want:      time.Date(2024, 1, 5, 9, 15, 0, 0, time.UTC),
		},
		{
			name:      "US with AM/PM",
			input:     "1/5/2024 2:30 PM",
			wantValid: true,
			want:      time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name:      "US 24h",
			input:     "01/05/2024 14:30:00",
			wantValid: true,
			want:      time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name:      "date only",
			input:     "2024-01-05",
			wantValid: true,
			want:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "compact date",
			input:     "20240105",
			wantValid: true,
			want:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "Excel serial with time",
			input:     "45296.375",
			wantValid: true,
			want:      time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "Excel formula prefix",
			input:     `="2024-01-05 09:00"`,
			wantValid: true,
			want:      time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		},
		{name: "empty", input: "", wantValid: false},
		{name: "garbage", input: "not a date", wantValid: false},
		{name: "negative number", input: "-5", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseTimestamp(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp_TwoDigitYear(t *testing.T) {
	got, ok := ParseTimestamp("1/5/24")
	if !ok {
		t.Fatal("ParseTimestamp(1/5/24) not valid")
	}
	if got.Year() != 2024 {
		t.Errorf("year = %d, want 2024", got.Year())
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string
	}{
		{name: "integer", input: "123", wantValid: true, wantValue: "123"},
		{name: "decimal", input: "123.45", wantValid: true, wantValue: "123.45"},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: "0.99"},
		{name: "dollar with separators", input: "$1,234.56", wantValid: true, wantValue: "1234.56"},
		{name: "peso sign", input: "₱250.00", wantValid: true, wantValue: "250"},
		{name: "accounting negative", input: "(123.45)", wantValid: true, wantValue: "-123.45"},
		{name: "accounting negative with currency", input: "($1,234.56)", wantValid: true, wantValue: "-1234.56"},
		{name: "empty", input: "", wantValid: false},
		{name: "text", input: "abc", wantValid: false},
		{name: "scientific notation rejected", input: "1.5e10", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDecimal(tt.input)
			if ok != tt.wantValid {
				t.Fatalf("ParseDecimal(%q) valid = %v, want %v", tt.input, ok, tt.wantValid)
			}
			if ok && got.String() != tt.wantValue {
				t.Errorf("ParseDecimal(%q) = %s, want %s", tt.input, got.String(), tt.wantValue)
			}
		})
	}
}
