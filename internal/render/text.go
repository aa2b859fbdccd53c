package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/anseconv/internal/core"
	"github.com/JonMunkholm/anseconv/internal/schema"
)

// TextOption configures a TextSink.
type TextOption func(*TextSink)

// WithBanner brackets the run with a header naming the source and an end
// marker.
func WithBanner() TextOption {
	return func(s *TextSink) { s.banner = true }
}

// WithBlockComments writes a comment line before each type block.
func WithBlockComments() TextOption {
	return func(s *TextSink) { s.blockComments = true }
}

// TextSink writes records as delimited declaration lines:
//
//	<WIDGET>5;heavy;
type TextSink struct {
	w             *bufio.Writer
	opts          schema.FormatOptions
	banner        bool
	blockComments bool
	lines         int
}

// NewTextSink wraps w. Output is buffered until End.
func NewTextSink(w io.Writer, opts schema.FormatOptions, options ...TextOption) *TextSink {
	s := &TextSink{w: bufio.NewWriter(w), opts: opts}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *TextSink) Begin(source string) error {
	if !s.banner {
		return nil
	}
	_, err := fmt.Fprintf(s.w, "----CONTENTS GENERATED FROM: %s----\n\n", source)
	return err
}

func (s *TextSink) BeginBlock(b Block) error {
	if !s.blockComments {
		return nil
	}
	_, err := fmt.Fprintf(s.w, "\n%s Generating text from %s...\n\n", s.opts.Comment, b.Type)
	return err
}

// Comment writes the comment character followed by the tab-separated parts.
func (s *TextSink) Comment(parts []string) error {
	line := s.opts.Comment
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			line += "\t" + p
		}
	}
	_, err := s.w.WriteString(strings.TrimSpace(line) + "\n")
	return err
}

func (s *TextSink) Record(rec core.MatchedRecord) error {
	if _, err := s.w.WriteString(FormatLine(rec, s.opts)); err != nil {
		return err
	}
	s.lines++
	return s.w.WriteByte('\n')
}

// End writes the end marker when a banner was requested and flushes.
func (s *TextSink) End() error {
	if s.banner {
		if _, err := s.w.WriteString("----END OF FILE----"); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

// Abort flushes the records written so far. The end marker is left out so a
// partial file does not read as a finished export.
func (s *TextSink) Abort() error {
	return s.w.Flush()
}

// Lines returns the number of records written.
func (s *TextSink) Lines() int { return s.lines }

// FormatLine renders one record without the line terminator. Every token,
// empty or not, is followed by the splitter.
func FormatLine(rec core.MatchedRecord, opts schema.FormatOptions) string {
	var b strings.Builder
	b.WriteString(opts.DelimitHead)
	b.WriteString(rec.Type)
	b.WriteString(opts.DelimitTail)
	for _, tok := range rec.Tokens {
		b.WriteString(tok.Text)
		b.WriteString(opts.Splitter)
	}
	return b.String()
}
