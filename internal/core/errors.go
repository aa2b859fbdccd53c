package core

import (
	"errors"
	"fmt"
	"strings"
)

// Reasons a cell is rejected under a layout.
var (
	ErrMissingMandatory = errors.New("missing mandatory value")
	ErrNotBoolean       = errors.New("non-boolean value")
	ErrNotInteger       = errors.New("non-integer value")
	ErrNotDouble        = errors.New("non-double value")
	ErrIllegalCharacter = errors.New("text contains a reserved character")
	ErrExtraCell        = errors.New("value beyond the last field of the layout")
)

// ErrUnknownType is wrapped by an UnmatchedRecordError for a type the
// schema does not define.
var ErrUnknownType = errors.New("type has no definition")

// CellParsingError is one cell failing under one layout. The matcher recovers
// from it by trying the next layout.
type CellParsingError struct {
	Source string
	Row    int
	Column int    // 1-based
	Layout int    // index of the layout being tried, -1 when not matching
	Field  string // empty for a cell past the layout's last field
	Value  string
	Char   string // the offending character for ErrIllegalCharacter
	Err    error
}

func (e *CellParsingError) Error() string {
	var b strings.Builder
	if e.Row > 0 && e.Column > 0 {
		fmt.Fprintf(&b, "cell %s", CellRef(e.Column, e.Row))
	} else {
		b.WriteString("cell")
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (%s)", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Char != "" {
		fmt.Fprintf(&b, " %q", e.Char)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " in %q", e.Value)
	}
	return b.String()
}

func (e *CellParsingError) Unwrap() error { return e.Err }

// Cell returns the A1 reference of the failing cell.
func (e *CellParsingError) Cell() string {
	return CellRef(e.Column, e.Row)
}

// UnmatchedRecordError reports a row that no layout of its type accepted.
type UnmatchedRecordError struct {
	Source   string
	Row      int
	Type     string
	Known    bool                // the schema defines Type
	Failures []*CellParsingError // one per layout tried, in order
}

func (e *UnmatchedRecordError) Error() string {
	loc := fmt.Sprintf("row %d", e.Row)
	if e.Source != "" {
		loc = fmt.Sprintf("row %d (%s)", e.Row, e.Source)
	}
	if !e.Known {
		return fmt.Sprintf("%s: configuration file does not contain definition for %s", loc, e.Type)
	}
	return fmt.Sprintf("%s: no definition of %s matched the row (%s)", loc, e.Type, strings.Join(e.Reasons(), "; "))
}

func (e *UnmatchedRecordError) Unwrap() error {
	if !e.Known {
		return ErrUnknownType
	}
	return nil
}

// Reasons describes why each layout was rejected, in layout order.
func (e *UnmatchedRecordError) Reasons() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = fmt.Sprintf("layout %d: %v", f.Layout, f)
	}
	return out
}

// IllegalCharacterError reports a row whose layouts were exhausted while at
// least one of them rejected a String/Text value for a reserved character.
type IllegalCharacterError struct {
	Cell      *CellParsingError
	Unmatched *UnmatchedRecordError
}

func (e *IllegalCharacterError) Error() string {
	return fmt.Sprintf("row %d: %s: text must not contain special character %q",
		e.Cell.Row, e.Cell.Cell(), e.Cell.Char)
}

func (e *IllegalCharacterError) Unwrap() error { return e.Unmatched }
