package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/anseconv/internal/core"
	"github.com/JonMunkholm/anseconv/internal/schema"
)

const widgetSchema = `{
  "options": {"comment": "#", "delimiter": "<>", "splitter": ";", "min_crumb": 0.001, "col_offset": 1},
  "types": {
    "WIDGET": [
      {"id": {"Type": "Integer", "Mandatory": true}, "weight": {"Type": "Double", "Default": "0.0"}},
      {"id": {"Type": "Integer", "Mandatory": true}, "label": {"Type": "String", "Mandatory": true}}
    ],
    "SWITCH": [
      {"name": {"Type": "String", "Mandatory": true}, "on": {"Type": "Boolean"}, "note": {"Type": "Text"}}
    ]
  },
  "grouping": {"PARTS": ["WIDGET"]}
}`

func loadSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(widgetSchema))
	require.NoError(t, err)
	return s
}

func match(t *testing.T, m *core.Matcher, typ string, cells ...string) core.MatchedRecord {
	t.Helper()
	rec, err := m.Match(core.Row{Number: 1, Type: typ, FirstColumn: 2, Cells: cells})
	require.NoError(t, err)
	return rec
}

func TestTextSink_WidgetLines(t *testing.T) {
	s := loadSchema(t)
	m := core.NewMatcher(s, core.TextTokens, nil)

	var buf bytes.Buffer
	sink := NewTextSink(&buf, s.Options)
	require.NoError(t, sink.Begin("model.xlsx"))
	require.NoError(t, sink.Record(match(t, m, "WIDGET", "5", "heavy")))
	require.NoError(t, sink.Record(match(t, m, "WIDGET", "5")))
	require.NoError(t, sink.End())

	assert.Equal(t, "<WIDGET>5;heavy;\n<WIDGET>5;0.0;\n", buf.String())
	assert.Equal(t, 2, sink.Lines())
}

func TestTextSink_EmptyTokensKeepPositions(t *testing.T) {
	s := loadSchema(t)
	m := core.NewMatcher(s, core.TextTokens, nil)

	line := FormatLine(match(t, m, "SWITCH", "pump", "", "spare"), s.Options)
	assert.Equal(t, "<SWITCH>pump;;spare;", line)
}

func TestTextSink_BannerAndBlocks(t *testing.T) {
	s := loadSchema(t)
	m := core.NewMatcher(s, core.TextTokens, nil)

	var buf bytes.Buffer
	sink := NewTextSink(&buf, s.Options, WithBanner(), WithBlockComments())
	require.NoError(t, sink.Begin("model.db"))
	require.NoError(t, sink.BeginBlock(Block{Type: "SWITCH"}))
	require.NoError(t, sink.Record(match(t, m, "SWITCH", "pump", "TRUE")))
	require.NoError(t, sink.End())

	want := "----CONTENTS GENERATED FROM: model.db----\n\n" +
		"\n# Generating text from SWITCH...\n\n" +
		"<SWITCH>pump;1;;\n" +
		"----END OF FILE----"
	assert.Equal(t, want, buf.String())
}

func TestTextSink_AbortKeepsRowsWithoutEndMarker(t *testing.T) {
	s := loadSchema(t)
	m := core.NewMatcher(s, core.TextTokens, nil)

	var buf bytes.Buffer
	sink := NewTextSink(&buf, s.Options, WithBanner())
	require.NoError(t, sink.Begin("model.db"))
	require.NoError(t, sink.Record(match(t, m, "WIDGET", "5", "2.5")))
	assert.Empty(t, buf.String(), "output is buffered until the run ends")

	require.NoError(t, sink.Abort())
	assert.Equal(t, "----CONTENTS GENERATED FROM: model.db----\n\n<WIDGET>5;2.5;\n", buf.String())
}

func TestTextSink_Comment(t *testing.T) {
	s := loadSchema(t)

	var buf bytes.Buffer
	sink := NewTextSink(&buf, s.Options)
	require.NoError(t, sink.Comment([]string{"pumps", "", " station 4 "}))
	require.NoError(t, sink.Comment(nil))
	require.NoError(t, sink.End())

	assert.Equal(t, "#\tpumps\tstation 4\n#\n", buf.String())
}

func TestFormatLine_CustomDelimiters(t *testing.T) {
	opts := schema.DefaultFormatOptions()
	opts.DelimitHead, opts.DelimitTail, opts.Splitter = "[", "]", "|"

	rec := core.MatchedRecord{Type: "T", Tokens: []core.Token{{Text: "a"}, {}, {Text: "3"}}}
	assert.Equal(t, "[T]a||3|", FormatLine(rec, opts))
}
