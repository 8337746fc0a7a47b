// Package upload reads spreadsheet uploads into generic rows. Nothing parsed
// here feeds the scorecard dataset.
package upload

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat rejects files excelize cannot open.
	ErrUnsupportedFormat = errors.New("upload: unsupported spreadsheet format")
	// ErrInvalidWorkbook wraps workbook decoding failures.
	ErrInvalidWorkbook = errors.New("upload: invalid workbook")
	// ErrEmptyWorkbook is returned when the workbook has no sheets.
	ErrEmptyWorkbook = errors.New("upload: workbook has no sheets")
)

var supportedExtensions = map[string]struct{}{
	".xlsx": {},
	".xlsm": {},
	".xltx": {},
	".xltm": {},
}

// SupportedExtensions lists the accepted file extensions in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Row maps header names to cell text. Empty cells are omitted.
type Row map[string]string

// Batch is one parsed upload.
type Batch struct {
	ID       string
	Filename string
	Sheet    string
	Headers  []string
	Rows     []Row
	ParsedAt time.Time
}

// Preview returns up to n leading rows.
func (b Batch) Preview(n int) []Row {
	if n <= 0 || len(b.Rows) == 0 {
		return nil
	}
	if n > len(b.Rows) {
		n = len(b.Rows)
	}
	return b.Rows[:n]
}

// Parser reads the first sheet of a workbook.
type Parser struct {
	maxRows int
	now     func() time.Time
}

// NewParser returns a parser keeping at most maxRows data rows; zero keeps all.
func NewParser(maxRows int) *Parser {
	return &Parser{maxRows: maxRows, now: time.Now}
}

// WithNow overrides the parse timestamp clock.
func (p *Parser) WithNow(now func() time.Time) *Parser {
	if now != nil {
		p.now = now
	}
	return p
}

// Parse decodes the first sheet. The first row is the header; blank header
// cells fall back to the column letter and fully empty rows are skipped.
func (p *Parser) Parse(r io.Reader, filename string) (Batch, error) {
	if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(filename))]; !ok {
		return Batch{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Batch{}, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Batch{}, ErrEmptyWorkbook
	}
	sheet := sheets[0]
	grid, err := f.GetRows(sheet)
	if err != nil {
		return Batch{}, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}

	batch := Batch{
		ID:       uuid.NewString(),
		Filename: filepath.Base(filename),
		Sheet:    sheet,
		ParsedAt: p.now(),
	}
	if len(grid) == 0 {
		return batch, nil
	}
	batch.Headers = headers(grid)
	for _, cells := range grid[1:] {
		row := make(Row)
		for i, cell := range cells {
			cell = strings.TrimSpace(cell)
			if cell == "" || i >= len(batch.Headers) {
				continue
			}
			row[batch.Headers[i]] = cell
		}
		if len(row) == 0 {
			continue
		}
		batch.Rows = append(batch.Rows, row)
		if p.maxRows > 0 && len(batch.Rows) >= p.maxRows {
			break
		}
	}
	return batch, nil
}

func headers(grid [][]string) []string {
	width := 0
	for _, cells := range grid {
		if len(cells) > width {
			width = len(cells)
		}
	}
	out := make([]string, width)
	for i := range out {
		if i < len(grid[0]) {
			out[i] = strings.TrimSpace(grid[0][i])
		}
		if out[i] == "" {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				name = fmt.Sprintf("col_%d", i+1)
			}
			out[i] = name
		}
	}
	return out
}
