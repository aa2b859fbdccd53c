package core

import (
	"fmt"
	"strings"
)

// ColumnLabel converts a 1-based column index to its spreadsheet label
// (1 -> A, 26 -> Z, 27 -> AA). Indices below 1 yield "".
func ColumnLabel(n int) string {
	var b []byte
	for n > 0 {
		mod := (n - 1) % 26
		b = append(b, byte('A'+mod))
		n = (n - mod) / 26
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// ColumnIndex converts a spreadsheet column label back to its 1-based index.
// Lowercase letters are accepted.
func ColumnIndex(label string) (int, error) {
	if label == "" {
		return 0, fmt.Errorf("empty column label")
	}
	n := 0
	for _, r := range strings.ToUpper(label) {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column label %q", label)
		}
		n = n*26 + int(r-'A'+1)
	}
	return n, nil
}

// CellRef renders a 1-based column and row as an A1 reference.
func CellRef(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnLabel(col), row)
}
