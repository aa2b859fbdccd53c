package core

import (
	"errors"
	"log/slog"

	"github.com/JonMunkholm/anseconv/internal/schema"
)

// MatchRow tries the layouts in order and returns the first one under which
// every field coerces and no non-empty cell is left over.
//
// When all layouts fail the error is an *UnmatchedRecordError holding one
// failure per layout, or an *IllegalCharacterError wrapping it if any layout
// was rejected for a reserved character.
func MatchRow(row Row, layouts []schema.Layout, c *Coercer) (MatchedRecord, error) {
	rec, _, err := matchRow(row, layouts, c)
	return rec, err
}

// matchRow is MatchRow that also returns the failures of the layouts tried,
// including those rejected before a successful match.
func matchRow(row Row, layouts []schema.Layout, c *Coercer) (MatchedRecord, []*CellParsingError, error) {
	failures := make([]*CellParsingError, 0, len(layouts))
	var illegal *CellParsingError

	for idx, layout := range layouts {
		tokens, failure := matchLayout(row, layout, c)
		if failure == nil {
			return MatchedRecord{
				Type:   row.Type,
				Layout: idx,
				Source: row.Source,
				Row:    row.Number,
				Fields: layout.FieldNames(),
				Tokens: tokens,
			}, failures, nil
		}

		failure.Source = row.Source
		failure.Row = row.Number
		failure.Layout = idx
		failures = append(failures, failure)
		if illegal == nil && errors.Is(failure, ErrIllegalCharacter) {
			illegal = failure
		}
	}

	unmatched := &UnmatchedRecordError{
		Source:   row.Source,
		Row:      row.Number,
		Type:     row.Type,
		Known:    true,
		Failures: failures,
	}
	if illegal != nil {
		return MatchedRecord{}, failures, &IllegalCharacterError{Cell: illegal, Unmatched: unmatched}
	}
	return MatchedRecord{}, failures, unmatched
}

// matchLayout coerces the row under one layout and stops at the first
// failing cell.
func matchLayout(row Row, layout schema.Layout, c *Coercer) ([]Token, *CellParsingError) {
	tokens := make([]Token, len(layout.Fields))
	for i, spec := range layout.Fields {
		tok, err := c.Coerce(row.Cell(i), spec)
		if err != nil {
			var cpe *CellParsingError
			if !errors.As(err, &cpe) {
				cpe = &CellParsingError{Field: spec.Name, Value: row.Cell(i), Err: err}
			}
			cpe.Column = row.Column(i)
			return nil, cpe
		}
		tokens[i] = tok
	}

	for i := len(layout.Fields); i < len(row.Cells); i++ {
		if !isEmptyCell(row.Cells[i]) {
			return nil, &CellParsingError{
				Column: row.Column(i),
				Value:  row.Cells[i],
				Err:    ErrExtraCell,
			}
		}
	}
	return tokens, nil
}

// Matcher resolves a row's layouts from the schema and matches it.
type Matcher struct {
	schema  *schema.Schema
	coercer *Coercer
	logger  *slog.Logger
}

// NewMatcher creates a matcher for one conversion run. A nil logger uses
// slog.Default.
func NewMatcher(s *schema.Schema, style TokenStyle, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		schema:  s,
		coercer: NewCoercer(s.Options, style),
		logger:  logger,
	}
}

// Match finds the layout for one row. Each rejected layout before the winner
// is logged at warn level; a row no layout accepts is returned as an error.
func (m *Matcher) Match(row Row) (MatchedRecord, error) {
	layouts, ok := m.schema.Layouts(row.Type)
	if !ok {
		return MatchedRecord{}, &UnmatchedRecordError{
			Source: row.Source,
			Row:    row.Number,
			Type:   row.Type,
		}
	}

	rec, failures, err := matchRow(row, layouts, m.coercer)
	for _, f := range failures {
		m.logger.Warn("layout rejected",
			"source", row.Source,
			"row", row.Number,
			"type", row.Type,
			"layout", f.Layout,
			"cell", f.Cell(),
			"reason", f.Err.Error(),
		)
	}
	if err != nil {
		return MatchedRecord{}, err
	}

	m.logger.Debug("row matched",
		"source", row.Source,
		"row", row.Number,
		"type", row.Type,
		"layout", rec.Layout,
	)
	return rec, nil
}
