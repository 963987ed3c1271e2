package sink

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"bidwatch-engine/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ErrUnknownCategory means the verdict named a category with no worksheet.
// The pipeline logs these and drops the row; there is no fallback bucket.
var ErrUnknownCategory = errors.New("unknown category")

var headers = []string{"Title", "URL", "Description", "Organization", "Closing Date", "Email"}

// Workbook appends accepted bids to an xlsx file, one worksheet per
// category. The file is opened per append, so a run that dies mid-way
// loses at most the row in flight.
type Workbook struct {
	path   string
	sheets map[string]string // lowercase category -> worksheet name
}

// Open creates the workbook with one headed worksheet per category if it
// does not exist yet, and validates the sheets otherwise.
func Open(path string, sheets map[string]string) (*Workbook, error) {
	w := &Workbook{path: path, sheets: map[string]string{}}
	for cat, name := range sheets {
		w.sheets[strings.ToLower(cat)] = name
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := w.create(); err != nil {
			return nil, err
		}
		return w, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range w.sheets {
		if idx, _ := f.GetSheetIndex(name); idx == -1 {
			return nil, fmt.Errorf("workbook %s is missing worksheet %q", path, name)
		}
	}
	return w, nil
}

func (w *Workbook) create() error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, name := range w.sheets {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeHeader(f, name); err != nil {
			return err
		}
		if first {
			idx, _ := f.GetSheetIndex(name)
			f.SetActiveSheet(idx)
			first = false
		}
	}
	// drop the default sheet excelize starts with
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		if _, named := w.sheetNamed("Sheet1"); !named {
			_ = f.DeleteSheet("Sheet1")
		}
	}
	return f.SaveAs(w.path)
}

func (w *Workbook) sheetNamed(name string) (string, bool) {
	for cat, n := range w.sheets {
		if n == name {
			return cat, true
		}
	}
	return "", false
}

// AppendRow writes one bid under the worksheet mapped to category.
// Categories are matched case-insensitively against the configured set.
func (w *Workbook) AppendRow(category string, row domain.SheetRow) error {
	sheet, ok := w.sheets[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	n := len(rows) + 1

	values := []string{row.Title, row.URL, row.Description, row.Organization, row.ClosingDate, row.Email}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, n)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}

	return f.Save()
}

func writeHeader(f *excelize.File, sheet string) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	return nil
}
