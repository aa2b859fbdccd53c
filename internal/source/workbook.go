package source

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"
)

// AllSheets selects every input sheet of a workbook.
const AllSheets = "ALL"

// inputPrefix starts the names of sheets selected by AllSheets.
const inputPrefix = "INPUT"

// ErrWorksheetNotFound is returned when a requested sheet does not exist.
var ErrWorksheetNotFound = errors.New("worksheet not found")

// Cell is one worksheet cell as text.
type Cell struct {
	Text    string
	Numeric bool // the cell holds a number, not a string
}

// Empty reports whether the cell holds nothing but whitespace.
func (c Cell) Empty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// SheetRow is one non-empty worksheet row. Cells[0] is column A.
type SheetRow struct {
	Number int
	Cells  []Cell
}

// FirstValue returns the index of the first non-empty cell, or -1.
func (r SheetRow) FirstValue() int {
	for i, c := range r.Cells {
		if !c.Empty() {
			return i
		}
	}
	return -1
}

// Workbook is an .xlsx file opened for reading.
type Workbook struct {
	name string
	wb   *spreadsheet.Workbook
}

// OpenWorkbook opens an .xlsx file.
func OpenWorkbook(path string) (*Workbook, error) {
	wb, err := spreadsheet.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{name: path, wb: wb}, nil
}

// ReadWorkbook reads an .xlsx document from r.
func ReadWorkbook(r io.ReaderAt, size int64, name string) (*Workbook, error) {
	wb, err := spreadsheet.Read(r, size)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	return &Workbook{name: name, wb: wb}, nil
}

// Name returns the file name the workbook was opened from.
func (w *Workbook) Name() string { return w.name }

// Close releases the workbook's temporary files.
func (w *Workbook) Close() error {
	return w.wb.Close()
}

// SheetNames lists the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	sheets := w.wb.Sheets()
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name()
	}
	return names
}

// Select resolves a worksheet selection. An empty selection or AllSheets
// picks every sheet whose trimmed name starts with INPUT, ignoring case;
// otherwise selection is a semicolon-separated list of sheet names.
func (w *Workbook) Select(selection string) ([]string, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" || strings.EqualFold(selection, AllSheets) {
		var out []string
		for _, name := range w.SheetNames() {
			if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(name)), inputPrefix) {
				out = append(out, name)
			}
		}
		return out, nil
	}

	var out []string
	for _, want := range strings.Split(selection, ";") {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		name, ok := w.lookup(want)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrWorksheetNotFound, want)
		}
		out = append(out, name)
	}
	return out, nil
}

func (w *Workbook) lookup(want string) (string, bool) {
	for _, name := range w.SheetNames() {
		if strings.TrimSpace(name) == want {
			return name, true
		}
	}
	return "", false
}

// Rows returns the non-empty rows of a sheet in row order.
func (w *Workbook) Rows(sheetName string) ([]SheetRow, error) {
	sheet, ok := w.sheet(sheetName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorksheetNotFound, sheetName)
	}

	var out []SheetRow
	for _, row := range sheet.Rows() {
		sr := SheetRow{Number: int(row.RowNumber())}
		for _, cell := range row.Cells() {
			colName, err := cell.Column()
			if err != nil {
				continue
			}
			idx := int(reference.ColumnToIndex(colName))
			for len(sr.Cells) <= idx {
				sr.Cells = append(sr.Cells, Cell{})
			}
			sr.Cells[idx] = readCell(cell)
		}
		if sr.FirstValue() >= 0 {
			out = append(out, sr)
		}
	}
	return out, nil
}

func (w *Workbook) sheet(name string) (spreadsheet.Sheet, bool) {
	for _, s := range w.wb.Sheets() {
		if s.Name() == name {
			return s, true
		}
	}
	return spreadsheet.Sheet{}, false
}

func readCell(c spreadsheet.Cell) Cell {
	switch {
	case c.IsEmpty():
		return Cell{}
	case c.IsBool():
		b, err := c.GetValueAsBool()
		if err != nil {
			return Cell{Text: c.GetString()}
		}
		return Cell{Text: boolText(b)}
	case c.IsNumber():
		raw, err := c.GetRawValue()
		if err != nil {
			return Cell{Text: c.GetFormattedValue(), Numeric: true}
		}
		return Cell{Text: raw, Numeric: true}
	default:
		return Cell{Text: c.GetString()}
	}
}
