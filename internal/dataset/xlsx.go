package dataset

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the first worksheet of an xlsx workbook.
func LoadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, filepath.Base(path))
}

// ReadXLSX reads the first worksheet of an xlsx workbook from r.
func ReadXLSX(r io.Reader, name string) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, name)
}

func readWorkbook(f *excelize.File, name string) (*Dataset, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	sheet := sheets[0]

	display, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q raw values: %w", sheet, err)
	}

	header := -1
	for i, r := range display {
		if !isBlankRow(r) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, ErrEmpty
	}

	var rows, rawRows [][]string
	for i := header + 1; i < len(display); i++ {
		if isBlankRow(display[i]) {
			continue
		}
		rows = append(rows, display[i])
		if i < len(raw) {
			rawRows = append(rawRows, raw[i])
		} else {
			rawRows = append(rawRows, nil)
		}
	}

	ds := New(name, display[header], rows)
	ds.raw = rawRows
	return ds, nil
}
