package core

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/anseconv/internal/schema"
)

const widgetSchema = `{
  "options": {"comment": "#", "delimiter": "<>", "splitter": ";", "min_crumb": 0.001},
  "types": {
    "WIDGET": [
      {"id": {"Type": "Integer", "Mandatory": true}, "weight": {"Type": "Double", "Default": "0.0"}},
      {"id": {"Type": "Integer", "Mandatory": true}, "label": {"Type": "String", "Mandatory": true}}
    ],
    "SWITCH": [
      {"on": {"Type": "Boolean", "Mandatory": true}}
    ]
  }
}`

func loadWidgetSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(widgetSchema))
	require.NoError(t, err)
	return s
}

func tokenTexts(rec MatchedRecord) []string {
	out := make([]string, len(rec.Tokens))
	for i, tok := range rec.Tokens {
		out[i] = tok.Text
	}
	return out
}

func TestMatcher_WidgetFallback(t *testing.T) {
	m := NewMatcher(loadWidgetSchema(t), TextTokens, nil)

	rec, err := m.Match(Row{Number: 2, Type: "WIDGET", FirstColumn: 2, Cells: []string{"5", "heavy"}})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Layout)
	assert.Equal(t, []string{"5", "heavy"}, tokenTexts(rec))
	assert.Equal(t, []string{"id", "label"}, rec.Fields)

	rec, err = m.Match(Row{Number: 3, Type: "WIDGET", FirstColumn: 2, Cells: []string{"5"}})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Layout)
	assert.Equal(t, []string{"5", "0.0"}, tokenTexts(rec))
	assert.True(t, rec.Tokens[1].Defaulted)
}

func TestMatcher_BooleanStyles(t *testing.T) {
	s := loadWidgetSchema(t)
	row := Row{Number: 1, Type: "SWITCH", Cells: []string{"true"}}

	rec, err := NewMatcher(s, TextTokens, nil).Match(row)
	require.NoError(t, err)
	assert.Equal(t, "1", rec.Tokens[0].Text)

	rec, err = NewMatcher(s, GridTokens, nil).Match(row)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", rec.Tokens[0].Text)
}

func TestMatchRow_OrderDependence(t *testing.T) {
	str := schema.Layout{Fields: []schema.FieldSpec{field("v", schema.FieldString, true)}}
	num := schema.Layout{Fields: []schema.FieldSpec{field("v", schema.FieldInteger, true)}}
	c := NewCoercer(testOptions(), TextTokens)
	row := Row{Number: 1, Type: "T", Cells: []string{"5"}}

	rec, err := MatchRow(row, []schema.Layout{str, num}, c)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Layout)
	assert.Equal(t, schema.FieldString, rec.Tokens[0].Type)

	rec, err = MatchRow(row, []schema.Layout{num, str}, c)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Layout)
	assert.Equal(t, schema.FieldInteger, rec.Tokens[0].Type)
}

func TestMatchRow_StrictArity(t *testing.T) {
	one := schema.Layout{Fields: []schema.FieldSpec{field("id", schema.FieldInteger, true)}}
	c := NewCoercer(testOptions(), TextTokens)

	_, err := MatchRow(Row{Number: 4, Type: "T", FirstColumn: 2, Cells: []string{"1", "", "extra"}}, []schema.Layout{one}, c)
	var unmatched *UnmatchedRecordError
	require.True(t, errors.As(err, &unmatched))
	require.Len(t, unmatched.Failures, 1)
	assert.ErrorIs(t, unmatched.Failures[0], ErrExtraCell)
	assert.Equal(t, "D4", unmatched.Failures[0].Cell())

	rec, err := MatchRow(Row{Number: 4, Type: "T", Cells: []string{"1", "  ", ""}}, []schema.Layout{one}, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, tokenTexts(rec))
}

func TestMatchRow_MissingCellsAreEmpty(t *testing.T) {
	layout := schema.Layout{Fields: []schema.FieldSpec{
		field("id", schema.FieldInteger, true),
		field("note", schema.FieldString, true),
	}}
	c := NewCoercer(testOptions(), TextTokens)

	_, err := MatchRow(Row{Number: 9, Type: "T", Cells: []string{"1"}}, []schema.Layout{layout}, c)
	var unmatched *UnmatchedRecordError
	require.True(t, errors.As(err, &unmatched))
	assert.ErrorIs(t, unmatched.Failures[0], ErrMissingMandatory)
	assert.Equal(t, "note", unmatched.Failures[0].Field)
}

func TestMatchRow_UnmatchedCarriesEveryLayout(t *testing.T) {
	s := loadWidgetSchema(t)
	layouts, _ := s.Layouts("WIDGET")
	c := NewCoercer(s.Options, TextTokens)

	_, err := MatchRow(Row{Source: "INPUTS - MISC", Number: 7, Type: "WIDGET", FirstColumn: 2, Cells: []string{"x"}}, layouts, c)
	var unmatched *UnmatchedRecordError
	require.True(t, errors.As(err, &unmatched))
	assert.True(t, unmatched.Known)
	require.Len(t, unmatched.Failures, 2)
	for i, f := range unmatched.Failures {
		assert.Equal(t, i, f.Layout)
		assert.Equal(t, 7, f.Row)
		assert.ErrorIs(t, f, ErrNotInteger)
		assert.Equal(t, "B7", f.Cell())
	}
	assert.Contains(t, err.Error(), "row 7 (INPUTS - MISC)")
	assert.Contains(t, err.Error(), "WIDGET")
}

func TestMatchRow_IllegalCharacter(t *testing.T) {
	s := loadWidgetSchema(t)
	layouts, _ := s.Layouts("WIDGET")
	c := NewCoercer(s.Options, TextTokens)

	_, err := MatchRow(Row{Number: 3, Type: "WIDGET", FirstColumn: 2, Cells: []string{"5", "a;b"}}, layouts, c)
	var illegal *IllegalCharacterError
	require.True(t, errors.As(err, &illegal))
	assert.Equal(t, ";", illegal.Cell.Char)
	assert.Equal(t, "C3", illegal.Cell.Cell())
	assert.Equal(t, 1, illegal.Cell.Layout)

	var unmatched *UnmatchedRecordError
	assert.True(t, errors.As(err, &unmatched), "illegal character error wraps the unmatched error")
}

func TestMatcher_UnknownType(t *testing.T) {
	m := NewMatcher(loadWidgetSchema(t), TextTokens, nil)

	_, err := m.Match(Row{Number: 1, Type: "GADGET", Cells: []string{"1"}})
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "does not contain definition for GADGET")
}

func TestMatcher_CaseInsensitiveType(t *testing.T) {
	m := NewMatcher(loadWidgetSchema(t), TextTokens, nil)

	rec, err := m.Match(Row{Number: 1, Type: "widget", Cells: []string{"1", "2.5"}})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Layout)
}

func TestMatcher_LogsFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	m := NewMatcher(loadWidgetSchema(t), TextTokens, logger)

	_, err := m.Match(Row{Source: "S", Number: 2, Type: "WIDGET", FirstColumn: 2, Cells: []string{"5", "heavy"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "layout rejected")
	assert.Contains(t, buf.String(), "cell=C2")
}
