// Package dataset loads transaction exports into an in-memory table and
// extracts typed records from it once a schema mapping is known.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/vscan/internal/schema"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// plainNumberRegex matches numbers written without formatting. A leading
// zero marks a code, not a number.
var plainNumberRegex = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// ErrEmpty is returned when an input has no header row.
var ErrEmpty = errors.New("input has no header row")

// Dataset is one loaded sheet: a header row and its data rows.
// Rows hold display values and are written back out unchanged.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]string

	// raw holds stored cell values when they differ from the display
	// values (xlsx dates are stored as serial numbers). Nil otherwise.
	raw [][]string
}

// New builds a dataset from already-split rows. Rows shorter than the header
// are padded; longer rows are kept as-is.
func New(name string, columns []string, rows [][]string) *Dataset {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}
	return &Dataset{Name: name, Columns: cols, Rows: padRows(rows, len(cols))}
}

// Len returns the number of data rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Mapping resolves the dataset's columns to canonical roles.
func (d *Dataset) Mapping() schema.Mapping {
	return schema.Resolve(d.Columns)
}

// Records extracts one typed record per data row using m.
// Cells that fail to parse leave the corresponding field unset.
func (d *Dataset) Records(m schema.Mapping) []Record {
	col := func(r schema.Role) int {
		i, _ := m.Index(r)
		return i
	}
	ts, card, cashier := col(schema.RoleTimestamp), col(schema.RoleCard), col(schema.RoleCashier)
	branch, register := col(schema.RoleBranch), col(schema.RoleRegister)
	amount, points := col(schema.RoleAmount), col(schema.RolePoints)

	recs := make([]Record, len(d.Rows))
	for i := range d.Rows {
		r := Record{Index: i}
		if v := d.value(i, ts); v != "" {
			r.Time, r.HasTime = ParseTimestamp(v)
		}
		r.Card = NormalizeID(d.value(i, card))
		r.Cashier = NormalizeID(d.value(i, cashier))
		r.Branch = NormalizeID(d.value(i, branch))
		r.Register = NormalizeID(d.value(i, register))
		r.Amount, r.HasAmount = ParseDecimal(d.value(i, amount))
		r.Points, r.HasPoints = ParseDecimal(d.value(i, points))
		recs[i] = r
	}
	return recs
}

// value returns the stored value of a cell, falling back to the display value.
func (d *Dataset) value(row, col int) string {
	if col < 0 {
		return ""
	}
	if d.raw != nil && row < len(d.raw) && col < len(d.raw[row]) && d.raw[row][col] != "" {
		return d.raw[row][col]
	}
	if col < len(d.Rows[row]) {
		return d.Rows[row][col]
	}
	return ""
}

// TypedRows returns the rows of recs with their stored cell types:
// timestamps as time.Time, amounts and points as float64, and plain numeric
// cells of unmapped columns as float64. Identifier columns keep their text
// so leading zeros and long card numbers survive. Cells that do not parse
// keep their display value.
func (d *Dataset) TypedRows(recs []Record, m schema.Mapping) [][]any {
	roleAt := make(map[int]schema.Role)
	for _, r := range m.Roles() {
		if i, ok := m.Index(r); ok {
			roleAt[i] = r
		}
	}

	out := make([][]any, len(recs))
	for n, rec := range recs {
		row := d.Rows[rec.Index]
		cells := make([]any, max(len(d.Columns), len(row)))
		for c := range cells {
			disp := ""
			if c < len(row) {
				disp = row[c]
			}
			cells[c] = disp
			if strings.TrimSpace(disp) == "" {
				continue
			}

			role, mapped := roleAt[c]
			switch {
			case role == schema.RoleTimestamp:
				if rec.HasTime {
					cells[c] = rec.Time
				}
			case role == schema.RoleAmount:
				if rec.HasAmount {
					cells[c] = rec.Amount.InexactFloat64()
				}
			case role == schema.RolePoints:
				if rec.HasPoints {
					cells[c] = rec.Points.InexactFloat64()
				}
			case mapped:
				// identifiers stay text
			default:
				if v, ok := d.typedValue(rec.Index, c, disp); ok {
					cells[c] = v
				}
			}
		}
		out[n] = cells
	}
	return out
}

// typedValue types an unmapped cell. A stored value that differs from a
// date-like display value is a formatted xlsx date.
func (d *Dataset) typedValue(row, col int, disp string) (any, bool) {
	stored := d.value(row, col)
	if stored != disp && !plainNumberRegex.MatchString(disp) {
		if t, ok := ParseTimestamp(disp); ok {
			return t, true
		}
	}
	if !plainNumberRegex.MatchString(stored) {
		return nil, false
	}
	f, err := strconv.ParseFloat(stored, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

// Load reads a dataset from path, choosing the reader by file extension.
func Load(path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	case ".csv", ".txt":
		return LoadCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Read is Load for an already open input; name supplies the extension.
func Read(r io.Reader, name string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, name)
	case ".csv", ".txt":
		return ReadCSV(r, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func padRows(rows [][]string, width int) [][]string {
	for i, r := range rows {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			rows[i] = padded
		}
	}
	return rows
}

func isBlankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
