package core

import (
	"strings"

	"github.com/JonMunkholm/anseconv/internal/schema"
)

// TokenStyle selects how coerced values render for a destination.
type TokenStyle int

const (
	// TextTokens renders booleans as 1/0 for declaration text.
	TextTokens TokenStyle = iota
	// GridTokens renders booleans as TRUE/FALSE for spreadsheet cells.
	GridTokens
)

// Row is one source row handed to the matcher.
type Row struct {
	Source      string   // sheet or table name, for diagnostics
	Number      int      // 1-based row number in the source
	Type        string   // declared record type
	FirstColumn int      // 1-based column of Cells[0]
	Cells       []string // raw cell text; "" is an empty cell
}

// Cell returns the raw text at position i, or "" past the end of the row.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Column returns the 1-based source column of position i.
func (r Row) Column(i int) int {
	first := r.FirstColumn
	if first < 1 {
		first = 1
	}
	return first + i
}

// isEmptyCell reports whether a raw cell holds no value.
func isEmptyCell(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Token is the coerced value of one field.
type Token struct {
	Text      string
	Type      schema.FieldType
	Defaulted bool // Text came from the field default
}

// Empty reports whether the token renders as a zero-length segment.
func (t Token) Empty() bool {
	return t.Text == ""
}

// MatchedRecord is a row coerced under exactly one layout.
type MatchedRecord struct {
	Type   string
	Layout int    // index of the matching layout
	Source string // sheet or table the row came from
	Row    int    // 1-based source row
	Fields []string
	Tokens []Token
}
