package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// File extensions the tool reads and writes.
const (
	ExtWorkbook = ".xlsx"
	ExtText     = ".in"
)

// ErrUnsupportedExtension is returned for a file whose extension does not
// select a known format.
var ErrUnsupportedExtension = errors.New("unsupported extension")

// CheckExtension verifies that path ends in one of the allowed extensions,
// ignoring case, and returns the matched extension in lower case.
func CheckExtension(path string, allowed ...string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if slices.Contains(allowed, ext) {
		return ext, nil
	}
	return "", fmt.Errorf("%s: %w %q (want %s)", path, ErrUnsupportedExtension, ext, strings.Join(allowed, ", "))
}

// DefaultOutput derives an output path from the input by replacing its
// extension.
func DefaultOutput(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

// OpenOutput creates or truncates path, or appends to it when appendMode is
// set.
func OpenOutput(path string, appendMode bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}
