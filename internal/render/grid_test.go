package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/JonMunkholm/anseconv/internal/core"
)

func TestGridSink_Layout(t *testing.T) {
	s := loadSchema(t)
	m := core.NewMatcher(s, core.GridTokens, nil)

	g := NewGridSink(s)
	require.NoError(t, g.Begin("model.db"))
	require.NoError(t, g.BeginBlock(Block{Type: "WIDGET", Columns: []string{"id", "weight"}}))
	require.NoError(t, g.Record(match(t, m, "WIDGET", "5", "2.5")))
	require.NoError(t, g.BeginBlock(Block{Type: "SWITCH", Columns: []string{"name", "on", "note"}}))
	require.NoError(t, g.Record(match(t, m, "SWITCH", "pump", "true")))
	require.NoError(t, g.End())
	assert.Equal(t, 2, g.Records())

	var buf bytes.Buffer
	require.NoError(t, g.Save(&buf))

	wb, err := spreadsheet.Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	sheets := wb.Sheets()
	require.Len(t, sheets, 2)
	assert.Equal(t, "INPUTS - PARTS", sheets[0].Name())
	assert.Equal(t, "INPUTS - MISC", sheets[1].Name())

	parts := sheets[0]
	assert.Equal(t, "COMMENT", parts.Cell("A1").GetString())
	assert.Equal(t, "INPUTS - PARTS", parts.Cell("B1").GetString())
	assert.True(t, parts.Cell("B2").IsEmpty(), "blank row before the block")
	assert.True(t, parts.Cell("A3").IsEmpty(), "marker column stays free")
	assert.Equal(t, "KEYWORD: WIDGET", parts.Cell("B3").GetString())
	assert.Equal(t, "id", parts.Cell("C3").GetString())
	assert.Equal(t, "weight", parts.Cell("D3").GetString())
	assert.True(t, parts.Cell("A4").IsEmpty())
	assert.Equal(t, "WIDGET", parts.Cell("B4").GetString())
	assert.True(t, parts.Cell("C4").IsNumber())
	assert.Equal(t, "5", parts.Cell("C4").GetString())
	assert.True(t, parts.Cell("D4").IsNumber())

	misc := sheets[1]
	assert.Equal(t, "COMMENT", misc.Cell("A1").GetString())
	assert.Equal(t, "KEYWORD: SWITCH", misc.Cell("B3").GetString())
	assert.Equal(t, "SWITCH", misc.Cell("B4").GetString())
	assert.Equal(t, "TRUE", misc.Cell("D4").GetString())
	assert.True(t, misc.Cell("E4").IsEmpty(), "empty token leaves no cell")
}

func TestGridSink_ColOffset(t *testing.T) {
	s := loadSchema(t)
	s.Options.ColOffset = 3
	m := core.NewMatcher(s, core.GridTokens, nil)

	g := NewGridSink(s)
	require.NoError(t, g.Record(match(t, m, "WIDGET", "5", "2.5")))
	require.NoError(t, g.End())

	sheet := g.Workbook().Sheets()[0]
	assert.Equal(t, "COMMENT", sheet.Cell("C1").GetString())
	assert.Equal(t, "INPUTS - PARTS", sheet.Cell("D1").GetString())
	assert.Equal(t, "KEYWORD: WIDGET", sheet.Cell("D3").GetString())
	assert.Equal(t, "WIDGET", sheet.Cell("D4").GetString())
	assert.Equal(t, "5", sheet.Cell("E4").GetString())
}

func TestGridSink_ImplicitBlockAndWidths(t *testing.T) {
	s := loadSchema(t)
	m := core.NewMatcher(s, core.GridTokens, nil)

	g := NewGridSink(s)
	require.NoError(t, g.Record(match(t, m, "SWITCH", "a rather long pump name")))
	require.NoError(t, g.End())

	sheet := g.Workbook().Sheets()[0]
	assert.Equal(t, "KEYWORD: SWITCH", sheet.Cell("B3").GetString())
	assert.Equal(t, "name", sheet.Cell("C3").GetString())

	x := sheet.Column(3).X()
	require.NotNil(t, x.WidthAttr)
	assert.InDelta(t, float64(len("a rather long pump name"))*1.05, *x.WidthAttr, 0.001)
}

func TestGridSink_Comment(t *testing.T) {
	s := loadSchema(t)

	g := NewGridSink(s)
	require.NoError(t, g.Comment([]string{"hand edited"}))
	require.NoError(t, g.End())

	sheet := g.Workbook().Sheets()[0]
	assert.Equal(t, "COMMENT", sheet.Cell("A2").GetString())
	assert.Equal(t, "hand edited", sheet.Cell("B2").GetString())
}
