package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxCSVSize bounds how much of a CSV input is read into memory.
var MaxCSVSize int64 = 256 << 20

// ErrTooLarge is returned when an input exceeds MaxCSVSize.
var ErrTooLarge = errors.New("input exceeds maximum size")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadCSV reads a comma-separated export from path.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return ReadCSV(f, filepath.Base(path))
}

// ReadCSV reads a comma-separated export from r. A leading byte order mark
// is dropped and invalid UTF-8 is replaced so headers still resolve.
func ReadCSV(r io.Reader, name string) (*Dataset, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxCSVSize+1))
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if int64(len(data)) > MaxCSVSize {
		return nil, ErrTooLarge
	}
	data = bytes.ToValidUTF8(bytes.TrimPrefix(data, utf8BOM), []byte("�"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	header := -1
	for i, rec := range records {
		if !isBlankRow(rec) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, ErrEmpty
	}

	var rows [][]string
	for _, rec := range records[header+1:] {
		if !isBlankRow(rec) {
			rows = append(rows, rec)
		}
	}
	return New(name, records[header], rows), nil
}
