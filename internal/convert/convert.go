// Package convert runs conversions end to end: it pulls rows from a source,
// classifies them, matches declarations through the core matcher and hands
// the records to a render sink.
//
// A run is single-threaded and processes rows strictly in source order. The
// first fatal error stops the run; whatever the sink has already written stays
// written.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/anseconv/internal/core"
	"github.com/JonMunkholm/anseconv/internal/render"
	"github.com/JonMunkholm/anseconv/internal/schema"
	"github.com/JonMunkholm/anseconv/internal/source"
)

// Stats summarizes a finished run.
type Stats struct {
	RunID    string
	Sources  int // sheets or tables converted
	Skipped  int // tables without a schema type
	Records  int
	Comments int
	Keywords int
	Ignored  int // rows whose first cell is not text
	Duration time.Duration
}

// Converter runs conversions against one schema. Each Converter carries a
// run ID that tags its log entries.
type Converter struct {
	schema *schema.Schema
	logger *slog.Logger
	runID  string
}

// New creates a converter with a fresh run ID. A nil logger uses slog.Default.
func New(s *schema.Schema, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Converter{
		schema: s,
		logger: logger.With("run_id", id),
		runID:  id,
	}
}

// RunID returns the ID attached to the run's log entries.
func (c *Converter) RunID() string { return c.runID }

// Logger returns the run-scoped logger.
func (c *Converter) Logger() *slog.Logger { return c.logger }

// WorkbookToText converts the selected sheets of a workbook into declaration
// text written to w.
func (c *Converter) WorkbookToText(ctx context.Context, wb *source.Workbook, selection string, w io.Writer) (Stats, error) {
	sink := render.NewTextSink(w, c.schema.Options)
	return c.WorkbookToSink(ctx, wb, selection, sink)
}

// WorkbookToSink converts the selected sheets of a workbook into sink.
func (c *Converter) WorkbookToSink(ctx context.Context, wb *source.Workbook, selection string, sink render.Sink) (Stats, error) {
	start := time.Now()
	stats := Stats{RunID: c.runID}

	sheets, err := wb.Select(selection)
	if err != nil {
		return stats, err
	}
	if strings.TrimSpace(selection) == "" || strings.EqualFold(strings.TrimSpace(selection), source.AllSheets) {
		c.logger.Info("processing all input sheets", "workbook", wb.Name(), "sheets", len(sheets))
	}

	if err := sink.Begin(wb.Name()); err != nil {
		return stats, fmt.Errorf("write output: %w", err)
	}

	matcher := core.NewMatcher(c.schema, core.TextTokens, c.logger)
	for _, name := range sheets {
		if err := ctx.Err(); err != nil {
			c.abort(sink)
			return stats, err
		}
		c.logger.Info("converting sheet", "sheet", name)
		if err := c.convertSheet(wb, name, matcher, sink, &stats); err != nil {
			c.abort(sink)
			return stats, err
		}
		stats.Sources++
	}

	if err := sink.End(); err != nil {
		return stats, fmt.Errorf("write output: %w", err)
	}
	stats.Duration = time.Since(start)
	c.logDone("workbook", stats)
	return stats, nil
}

func (c *Converter) convertSheet(wb *source.Workbook, sheet string, m *core.Matcher, sink render.Sink, stats *Stats) error {
	rows, err := wb.Rows(sheet)
	if err != nil {
		return err
	}

	markers := c.schema.Worksheet
	for _, row := range rows {
		first := row.FirstValue()
		lead := row.Cells[first]
		if lead.Numeric {
			c.logger.Warn("row does not start with text, skipped", "sheet", sheet, "row", row.Number)
			stats.Ignored++
			continue
		}

		word := strings.ToUpper(strings.TrimSpace(lead.Text))
		switch {
		case word == markers.Comment:
			parts := cellTexts(row.Cells[first+1:])
			if err := sink.Comment(parts); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			c.logger.Info("comment", "sheet", sheet, "row", row.Number)
			stats.Comments++

		case isKeyword(word, markers.Keyword):
			c.logger.Info("keyword row skipped", "sheet", sheet, "row", row.Number, "label", word)
			stats.Keywords++

		default:
			typeName := word
			if canonical, ok := c.schema.Canonical(word); ok {
				typeName = canonical
			}
			rec, err := m.Match(core.Row{
				Source:      sheet,
				Number:      row.Number,
				Type:        typeName,
				FirstColumn: first + 2,
				Cells:       cellTexts(row.Cells[first+1:]),
			})
			if err != nil {
				c.logger.Error("row not converted", "sheet", sheet, "row", row.Number, "type", typeName, "error", err)
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
			if err := sink.Record(rec); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			stats.Records++
		}
	}
	return nil
}

// abort keeps the partial output of a failed run.
func (c *Converter) abort(sink render.Sink) {
	if err := sink.Abort(); err != nil {
		c.logger.Warn("partial output not flushed", "error", err)
	}
}

// isKeyword reports whether an uppercased lead cell is a keyword label such
// as "KEYWORD: WIDGET".
func isKeyword(word, marker string) bool {
	head, _, _ := strings.Cut(word, ":")
	return strings.TrimSpace(head) == marker
}

func cellTexts(cells []source.Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}

// ExportDatabase converts every table the schema defines a type for into
// sink. Rows are matched with the given token style.
func (c *Converter) ExportDatabase(ctx context.Context, db source.Database, sink render.Sink, style core.TokenStyle) (Stats, error) {
	start := time.Now()
	stats := Stats{RunID: c.runID}

	tables, err := db.Tables(ctx)
	if err != nil {
		return stats, err
	}
	if err := sink.Begin(db.Name()); err != nil {
		return stats, fmt.Errorf("write output: %w", err)
	}

	matcher := core.NewMatcher(c.schema, style, c.logger)
	for _, name := range tables {
		typeName, ok := c.schema.Canonical(name)
		if !ok {
			c.logger.Info("no configuration for table, skipped", "table", name)
			stats.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			c.abort(sink)
			return stats, err
		}
		if err := c.exportTable(ctx, db, name, typeName, matcher, sink, &stats); err != nil {
			c.abort(sink)
			return stats, err
		}
		stats.Sources++
	}

	if err := sink.End(); err != nil {
		return stats, fmt.Errorf("write output: %w", err)
	}
	stats.Duration = time.Since(start)
	c.logDone("database", stats)
	return stats, nil
}

func (c *Converter) exportTable(ctx context.Context, db source.Database, name, typeName string, m *core.Matcher, sink render.Sink, stats *Stats) error {
	table, err := db.ReadTable(ctx, name)
	if err != nil {
		return err
	}
	c.logger.Info("exporting table", "table", name, "type", typeName, "rows", len(table.Rows))

	if err := sink.BeginBlock(render.Block{Type: typeName, Columns: table.Columns}); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	for i, cells := range table.Rows {
		rec, err := m.Match(core.Row{
			Source:      name,
			Number:      i + 1,
			Type:        typeName,
			FirstColumn: 1,
			Cells:       cells,
		})
		if err != nil {
			c.logger.Error("row not converted", "table", name, "row", i+1, "error", err)
			return fmt.Errorf("table %s: %w", name, err)
		}
		if err := sink.Record(rec); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		stats.Records++
	}
	return nil
}

// DatabaseToText exports a database as declaration text bracketed by a banner.
func (c *Converter) DatabaseToText(ctx context.Context, db source.Database, w io.Writer) (Stats, error) {
	sink := render.NewTextSink(w, c.schema.Options, render.WithBanner(), render.WithBlockComments())
	return c.ExportDatabase(ctx, db, sink, core.TextTokens)
}

// DatabaseToWorkbook exports a database into a new workbook. The caller saves
// the returned sink.
func (c *Converter) DatabaseToWorkbook(ctx context.Context, db source.Database) (*render.GridSink, Stats, error) {
	sink := render.NewGridSink(c.schema)
	stats, err := c.ExportDatabase(ctx, db, sink, core.GridTokens)
	return sink, stats, err
}

func (c *Converter) logDone(kind string, s Stats) {
	c.logger.Info("conversion completed",
		"kind", kind,
		"sources", s.Sources,
		"records", s.Records,
		"comments", s.Comments,
		"skipped", s.Skipped,
		"duration_ms", s.Duration.Milliseconds(),
	)
}
