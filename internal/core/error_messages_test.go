package core

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/JonMunkholm/anseconv/internal/schema"
)

func TestMapError(t *testing.T) {
	unmatched := &UnmatchedRecordError{Row: 4, Type: "WIDGET", Known: true}
	cell := &CellParsingError{Row: 4, Column: 2, Field: "id", Value: "x", Err: ErrNotInteger}

	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "configuration error",
			err:         fmt.Errorf("load schema: %w", &schema.ConfigurationError{Section: "types", Message: "missing"}),
			wantCode:    "CFG001",
			wantMessage: "The schema file is missing a section or holds a bad value",
		},
		{
			name:        "unreadable schema",
			err:         fmt.Errorf("read schema: %w", os.ErrNotExist),
			wantCode:    "CFG002",
			wantMessage: "The schema file could not be read",
		},
		{
			name:        "unmatched record",
			err:         fmt.Errorf("sheet INPUTS - MISC: %w", unmatched),
			wantCode:    "REC001",
			wantMessage: "No definition of the row's type accepts its cells",
		},
		{
			name:        "unknown type",
			err:         &UnmatchedRecordError{Row: 1, Type: "GADGET"},
			wantCode:    "REC002",
			wantMessage: "The schema has no definition for the row's type",
		},
		{
			name:        "illegal character wins over unmatched",
			err:         &IllegalCharacterError{Cell: cell, Unmatched: unmatched},
			wantCode:    "CHR001",
			wantMessage: "A text value holds the comment or splitter character",
		},
		{
			name:        "bare cell error",
			err:         cell,
			wantCode:    "CELL001",
			wantMessage: "A cell does not parse as its declared type",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			wantCode:    "SRC001",
			wantMessage: "Unable to connect to the model database",
		},
		{
			name:        "missing worksheet",
			err:         errors.New("worksheet not found: INPUTS - PIPES"),
			wantCode:    "SRC003",
			wantMessage: "A requested worksheet is not in the workbook",
		},
		{
			name:        "unsupported extension",
			err:         errors.New("output model.txt: unsupported extension \".txt\""),
			wantCode:    "FILE001",
			wantMessage: "The file type is not supported",
		},
		{
			name:        "busy server",
			err:         errors.New("too many concurrent conversions, please try again later"),
			wantCode:    "SRV001",
			wantMessage: "Every conversion slot is in use",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("FILE TOO LARGE"),
			wantCode:    "FILE003",
			wantMessage: "The upload exceeds the size limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := &UnmatchedRecordError{Row: 2, Type: "WIDGET", Known: true}
	result := FormatUserError(err)

	expected := "No definition of the row's type accepts its cells (Code: REC001). Compare the row against the layouts listed in the error"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("no file provided"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("dial tcp: connection refused")
		userErr := NewUserError(techErr)

		if userErr.Error() != "Unable to connect to the model database" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
