package render

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/JonMunkholm/anseconv/internal/core"
	"github.com/JonMunkholm/anseconv/internal/schema"
)

// widthFactor pads column widths computed from display width.
const widthFactor = 1.05

var headerGreen = color.RGB(0xCC, 0xFF, 0xCC)

// GridSink writes records into a workbook laid out for the workbook reader:
// each sheet opens with a comment marker row, and each type block is a blank
// row, a highlighted header row, then one row per record. Markers sit in the
// ColOffset column; type names and fields start one column to the right.
type GridSink struct {
	wb     *spreadsheet.Workbook
	schema *schema.Schema

	sheets map[string]*gridSheet
	cur    *gridSheet
	block  string

	markerStyle  spreadsheet.CellStyle
	keywordStyle spreadsheet.CellStyle
	headerStyle  spreadsheet.CellStyle

	records int
}

type gridSheet struct {
	name   string
	sheet  spreadsheet.Sheet
	next   uint32 // first unused row
	widths map[uint32]float64
}

// NewGridSink creates an empty workbook routed by the schema's grouping table.
func NewGridSink(s *schema.Schema) *GridSink {
	wb := spreadsheet.New()
	g := &GridSink{
		wb:     wb,
		schema: s,
		sheets: make(map[string]*gridSheet),
	}

	ss := wb.StyleSheet
	g.markerStyle = ss.AddCellStyle()
	g.markerStyle.SetFill(solidFill(ss, color.Yellow))

	g.headerStyle = ss.AddCellStyle()
	g.headerStyle.SetFill(solidFill(ss, headerGreen))

	bold := ss.AddFont()
	bold.SetBold(true)
	g.keywordStyle = ss.AddCellStyle()
	g.keywordStyle.SetFill(solidFill(ss, headerGreen))
	g.keywordStyle.SetFont(bold)

	return g
}

func solidFill(ss spreadsheet.StyleSheet, c color.Color) spreadsheet.Fill {
	fill := ss.Fills().AddFill()
	pf := fill.SetPatternFill()
	pf.SetPattern(sml.ST_PatternTypeSolid)
	pf.SetFgColor(c)
	return fill
}

func (g *GridSink) Begin(string) error { return nil }

// BeginBlock selects the sheet for the type, creating it on first use, and
// writes the block header.
func (g *GridSink) BeginBlock(b Block) error {
	sh := g.sheet(g.schema.SheetFor(b.Type))
	g.cur = sh
	g.block = b.Type

	col := g.typeColumn()
	row := sh.next + 1 // one blank row before each block

	g.setText(sh, row, col, g.schema.Worksheet.KeywordLabel(b.Type), &g.keywordStyle)
	for i, name := range b.Columns {
		g.setText(sh, row, col+1+uint32(i), strings.TrimSpace(name), &g.headerStyle)
	}
	sh.next = row + 1
	return nil
}

// Comment writes a comment marker row into the current sheet.
func (g *GridSink) Comment(parts []string) error {
	sh := g.cur
	if sh == nil {
		sh = g.sheet(schema.MiscSheet)
	}
	col := uint32(g.schema.Options.ColOffset)
	g.setText(sh, sh.next, col, g.schema.Worksheet.Comment, &g.markerStyle)
	for i, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			g.setText(sh, sh.next, col+1+uint32(i), p, nil)
		}
	}
	sh.next++
	return nil
}

// Record writes the type name and the record's tokens as native cells.
// Empty tokens leave their cell unset.
func (g *GridSink) Record(rec core.MatchedRecord) error {
	if g.cur == nil || g.block != rec.Type {
		if err := g.BeginBlock(Block{Type: rec.Type, Columns: rec.Fields}); err != nil {
			return err
		}
	}
	sh := g.cur
	col := g.typeColumn()
	g.setText(sh, sh.next, col, rec.Type, nil)

	for i, tok := range rec.Tokens {
		if tok.Empty() {
			continue
		}
		c := col + 1 + uint32(i)
		cell := sh.sheet.Row(sh.next).Cell(core.ColumnLabel(int(c)))
		switch tok.Type {
		case schema.FieldInteger, schema.FieldDouble:
			if f, err := strconv.ParseFloat(tok.Text, 64); err == nil {
				cell.SetNumber(f)
				break
			}
			cell.SetString(tok.Text)
		default:
			cell.SetString(tok.Text)
		}
		sh.grow(c, tok.Text)
	}

	sh.next++
	g.records++
	return nil
}

// End applies the accumulated column widths.
func (g *GridSink) End() error {
	for _, sh := range g.sheets {
		for _, c := range slices.Sorted(maps.Keys(sh.widths)) {
			cx := sh.sheet.Column(c).X()
			cx.WidthAttr = unioffice.Float64(sh.widths[c])
			cx.CustomWidthAttr = unioffice.Bool(true)
		}
	}
	return nil
}

// Abort leaves the workbook unsized. Callers do not save a failed export.
func (g *GridSink) Abort() error { return nil }

// Save writes the workbook as .xlsx.
func (g *GridSink) Save(w io.Writer) error {
	if err := g.wb.Save(w); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// SaveFile writes the workbook to path.
func (g *GridSink) SaveFile(path string) error {
	if err := g.wb.SaveToFile(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// Workbook exposes the underlying workbook.
func (g *GridSink) Workbook() *spreadsheet.Workbook { return g.wb }

// Records returns the number of records written.
func (g *GridSink) Records() int { return g.records }

// typeColumn is the column of keyword labels and type names. The marker
// column at ColOffset is left to comment markers.
func (g *GridSink) typeColumn() uint32 {
	return uint32(g.schema.Options.ColOffset) + 1
}

// sheet returns the named sheet, creating it with its marker row.
func (g *GridSink) sheet(name string) *gridSheet {
	if sh, ok := g.sheets[name]; ok {
		return sh
	}
	ws := g.wb.AddSheet()
	ws.SetName(name)
	sh := &gridSheet{name: name, sheet: ws, next: 1, widths: make(map[uint32]float64)}
	g.sheets[name] = sh

	col := uint32(g.schema.Options.ColOffset)
	g.setText(sh, 1, col, g.schema.Worksheet.Comment, &g.markerStyle)
	g.setText(sh, 1, col+1, name, nil)
	sh.next = 2
	return sh
}

func (g *GridSink) setText(sh *gridSheet, row, col uint32, text string, style *spreadsheet.CellStyle) {
	cell := sh.sheet.Row(row).Cell(core.ColumnLabel(int(col)))
	cell.SetString(text)
	if style != nil {
		cell.SetStyle(*style)
	}
	sh.grow(col, text)
}

// grow widens a column to fit text.
func (sh *gridSheet) grow(col uint32, text string) {
	w := float64(runewidth.StringWidth(strings.TrimSpace(text))) * widthFactor
	if w > sh.widths[col] {
		sh.widths[col] = w
	}
}
