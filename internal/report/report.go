// Package report lays out summarized buckets as xlsx workbooks.
//
// A period report has a RawData sheet with the bucket's rows as loaded, and
// one sheet per summarized dimension. Workbooks are written to a temporary
// file in the destination directory and renamed into place, so a report is
// either complete on disk or absent.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/schema"
	"github.com/JonMunkholm/vscan/internal/summary"
)

// Sheet names.
const (
	SheetRawData      = "RawData"
	SheetTopCards     = "TopCards"
	SheetTopCashiers  = "TopCashiers"
	SheetSummary      = "Summary"
	SheetTransactions = "Transactions"
)

// DateNumFmt is the number format of timestamp cells.
const DateNumFmt = "yyyy-mm-dd hh:mm:ss"

// ColLag is the extra column of an entity's Transactions sheet.
const ColLag = "Minutes Since Previous"

// Header fills of the two blocks of a split sheet.
const (
	matchFill = "#FCE4D6"
	restFill  = "#DDEBF7"
)

var sheetFor = map[schema.Role]string{
	schema.RoleCard:    SheetTopCards,
	schema.RoleCashier: SheetTopCashiers,
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns the artifact name for a period label.
func FileName(label string) string {
	return "top_transaction_" + label + ".xlsx"
}

// EntityFileName returns the artifact name for a single-entity lookup.
func EntityFileName(role schema.Role, id string) string {
	return fmt.Sprintf("entity_%s_%s.xlsx", role, unsafeName.ReplaceAllString(id, "_"))
}

// Assembler writes report workbooks into Dir.
type Assembler struct {
	Dir string

	// SplitPrefix partitions card entities when a split layout is requested:
	// cards starting with it form the left block.
	SplitPrefix string

	logger *slog.Logger

	// newFill and newDateStyle create styles; replaced in tests.
	newFill      func(f *excelize.File, color string) (int, error)
	newDateStyle func(f *excelize.File) (int, error)
}

// NewAssembler creates an assembler writing into dir.
func NewAssembler(dir, splitPrefix string, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		Dir:          dir,
		SplitPrefix:  splitPrefix,
		logger:       logger,
		newFill:      headerFill,
		newDateStyle: dateStyle,
	}
}

// In returns a copy of a writing into dir.
func (a *Assembler) In(dir string) *Assembler {
	c := *a
	c.Dir = dir
	return &c
}

// Input is everything needed to lay out one period report.
type Input struct {
	Dataset       *dataset.Dataset
	Summary       summary.BucketSummary
	SeparateCards bool
}

// Write assembles and saves the report for one bucket, returning its path.
func (a *Assembler) Write(in Input) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetRawData); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := a.writeRawData(f, in.Dataset, in.Summary.Bucket.Records); err != nil {
		return "", err
	}

	for _, tbl := range in.Summary.Tables {
		name, ok := sheetFor[tbl.Role]
		if !ok {
			continue
		}
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("create sheet %s: %w", name, err)
		}

		var err error
		if tbl.Role == schema.RoleCard && in.SeparateCards && a.SplitPrefix != "" {
			err = a.writeSplit(f, name, tbl)
		} else {
			err = writeTable(f, name, tbl.Headers, rows(tbl.Rows))
		}
		if err != nil {
			return "", fmt.Errorf("write sheet %s: %w", name, err)
		}
	}

	return a.save(f, FileName(in.Summary.Bucket.Label))
}

// WriteEntity saves the workbook for a single-entity lookup.
func (a *Assembler) WriteEntity(ds *dataset.Dataset, m schema.Mapping, ent *summary.Entity) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	s := ent.Summary
	headers := summary.Headers(s.Role, m, s.HasIntervals)
	if err := writeTable(f, SheetSummary, headers, [][]any{s.Row()}); err != nil {
		return "", fmt.Errorf("write sheet %s: %w", SheetSummary, err)
	}

	if _, err := f.NewSheet(SheetTransactions); err != nil {
		return "", fmt.Errorf("create sheet %s: %w", SheetTransactions, err)
	}
	headers = append(append([]string{}, ds.Columns...), ColLag)
	out := a.typedRows(f, ds, m, ent.Records)
	for i, row := range out {
		if lag := ent.Lags[i]; lag.Valid {
			row = append(row, lag.Minutes)
		} else {
			row = append(row, "")
		}
		out[i] = row
	}
	if err := writeTable(f, SheetTransactions, headers, out); err != nil {
		return "", fmt.Errorf("write sheet %s: %w", SheetTransactions, err)
	}

	return a.save(f, EntityFileName(s.Role, s.ID))
}

// writeRawData writes the bucket's rows unchanged, in bucket order, with
// their stored cell types.
func (a *Assembler) writeRawData(f *excelize.File, ds *dataset.Dataset, recs []dataset.Record) error {
	out := a.typedRows(f, ds, ds.Mapping(), recs)
	if err := writeTable(f, SheetRawData, ds.Columns, out); err != nil {
		return fmt.Errorf("write sheet %s: %w", SheetRawData, err)
	}
	return nil
}

// writeSplit lays out cards in two side-by-side blocks separated by one
// empty column. Header highlighting is best-effort.
func (a *Assembler) writeSplit(f *excelize.File, sheet string, tbl summary.Table) error {
	var matched, rest []summary.EntitySummary
	for _, s := range tbl.Rows {
		if strings.HasPrefix(s.ID, a.SplitPrefix) {
			matched = append(matched, s)
		} else {
			rest = append(rest, s)
		}
	}

	leftStyle, err := a.newFill(f, matchFill)
	var rightStyle int
	if err == nil {
		rightStyle, err = a.newFill(f, restFill)
	}
	if err != nil {
		leftStyle, rightStyle = 0, 0
		a.logger.Warn("split header highlight failed, writing unstyled", "sheet", sheet, "error", err)
	}

	width := len(tbl.Headers)
	header := make([]any, 0, 2*width+1)
	for _, h := range tbl.Headers {
		header = append(header, excelize.Cell{StyleID: leftStyle, Value: h})
	}
	header = append(header, nil)
	for _, h := range tbl.Headers {
		header = append(header, excelize.Cell{StyleID: rightStyle, Value: h})
	}

	body := make([][]any, max(len(matched), len(rest)))
	for i := range body {
		row := make([]any, 0, 2*width+1)
		if i < len(matched) {
			row = append(row, matched[i].Row()...)
		} else {
			row = append(row, make([]any, width)...)
		}
		row = append(row, nil)
		if i < len(rest) {
			row = append(row, rest[i].Row()...)
		}
		body[i] = row
	}

	return streamRows(f, sheet, header, body)
}

func writeTable(f *excelize.File, sheet string, headers []string, body [][]any) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	return streamRows(f, sheet, header, body)
}

func streamRows(f *excelize.File, sheet string, header []any, body [][]any) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, row := range body {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func rows(sums []summary.EntitySummary) [][]any {
	out := make([][]any, len(sums))
	for i, s := range sums {
		out[i] = s.Row()
	}
	return out
}

// typedRows returns the dataset rows of recs as typed cells, with
// timestamps carrying a date-time number format.
func (a *Assembler) typedRows(f *excelize.File, ds *dataset.Dataset, m schema.Mapping, recs []dataset.Record) [][]any {
	out := ds.TypedRows(recs, m)

	style, err := a.newDateStyle(f)
	if err != nil {
		// Excel's default date format is applied instead.
		style = 0
		a.logger.Warn("date style failed, using default date format", "error", err)
	}
	for _, row := range out {
		for i, v := range row {
			if t, ok := v.(time.Time); ok {
				row[i] = excelize.Cell{StyleID: style, Value: t}
			}
		}
	}
	return out
}

func dateStyle(f *excelize.File) (int, error) {
	layout := DateNumFmt
	return f.NewStyle(&excelize.Style{CustomNumFmt: &layout})
}

func headerFill(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
}

// save writes f to a temporary file next to the destination and renames it
// into place.
func (a *Assembler) save(f *excelize.File, name string) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	dst := filepath.Join(a.Dir, name)

	tmp, err := os.CreateTemp(a.Dir, ".vscan-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close workbook: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return "", fmt.Errorf("rename workbook: %w", err)
	}
	committed = true
	return dst, nil
}
