package dataset

// convert.go turns raw export cells into typed values.
//
// POS exports are edited by hand often enough that cells arrive with:
//   - Excel text-forcing prefixes (="0001234")
//   - currency symbols, thousands separators and accounting negatives
//   - timestamps in several layouts, or as Excel serial day numbers
//   - numeric identifiers rendered as floats (1234.0)
//
// Parse functions return ok=false for empty or unusable input; callers treat
// that as "value absent" rather than as an error.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// numericRegex validates a plain decimal number after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// floatIDRegex matches identifiers that a spreadsheet rendered as floats.
var floatIDRegex = regexp.MustCompile(`^\d+\.0+$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are moved
// to the previous century.
var TwoDigitYearPivot = 20

// maxExcelSerial is 9999-12-31 as an Excel serial day number.
const maxExcelSerial = 2958465.0

var (
	// Layouts carrying a time of day, tried first.
	dateTimeLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006 3:04:05 PM",
		"1/2/2006 3:04 PM",
		"01/02/2006 15:04:05",
		"01/02/2006 15:04",
		"02-Jan-2006 15:04:05",
		"Jan 2, 2006 3:04 PM",
	}
	twoDigitYearLayouts = []string{
		"1/2/06 15:04", "1/2/06 3:04 PM", "1/2/06", "01/02/06", "1-2-06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
		"Jan 2, 2006", "2 Jan 2006", "02-Jan-2006",
		"20060102",
	}
)

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, the Excel formula prefix (="...") and quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// NormalizeID cleans an entity identifier. Integral identifiers that a
// spreadsheet rendered as floats ("1234.0") lose the fraction so the same
// card never appears under two spellings.
func NormalizeID(s string) string {
	s = CleanCell(s)
	if floatIDRegex.MatchString(s) {
		s = s[:strings.IndexByte(s, '.')]
	}
	return s
}

// ParseTimestamp parses a transaction timestamp.
// No timezone normalization is done; values are taken as wall-clock times.
func ParseTimestamp(s string) (time.Time, bool) {
	s = CleanCell(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	// Stored xlsx dates are serial day numbers.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= maxExcelSerial && !math.IsNaN(f) {
		t, err := excelize.ExcelDateToTime(f, false)
		if err == nil {
			return t.Round(time.Second), true
		}
	}

	return time.Time{}, false
}

// ParseDecimal parses a monetary or points value.
// Handles currency symbols, thousands separators and accounting format
// (parentheses for negative).
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = CleanCell(s)
	if s == "" {
		return decimal.Zero, false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.NewReplacer(
		"$", "",
		"€", "", // Euro
		"£", "", // Pound
		"₱", "", // Peso
		",", "",
		" ", "",
	).Replace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
