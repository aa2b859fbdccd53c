// Package render serializes matched records. A [Sink] receives the records of
// one conversion run in source order; [TextSink] writes declaration text and
// [GridSink] writes a styled workbook.
package render

import "github.com/JonMunkholm/anseconv/internal/core"

// Block introduces the records of one type, in the order the source
// enumerates them.
type Block struct {
	Type    string
	Columns []string // header names for the block, if the source has them
}

// Sink is the destination of a conversion run. Calls arrive in order:
// Begin, then any mix of BeginBlock, Comment and Record, then End for a
// completed run or Abort for a failed one.
type Sink interface {
	Begin(source string) error
	BeginBlock(b Block) error
	Comment(parts []string) error
	Record(rec core.MatchedRecord) error
	End() error
	// Abort keeps what was already written without closing the output as
	// complete.
	Abort() error
}
