// Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When a conversion stops, the CLI prints the coded message and the HTTP layer
// returns it as JSON; the technical error goes to the log.
//
// Typed errors are recognized first with errors.As; anything else falls back
// to case-insensitive pattern matching on the error text.
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Schema invalid: The schema file is missing a section or holds a bad value
//	         Action: Fix the section named in the error and run again
//	         Matched: *schema.ConfigurationError
//
//	CFG002 - Schema unreadable: The schema file could not be read
//	         Action: Check the schema path
//	         Patterns: "read schema"
//
// # Record Errors (REC001-REC099, CELL001, CHR001)
//
//	REC001 - Unmatched row: No definition of the row's type accepts its cells
//	         Action: Compare the row against the layouts listed in the error
//	         Matched: *UnmatchedRecordError
//
//	REC002 - Unknown type: The schema has no definition for the row's type
//	         Action: Add the type to the schema or correct the type cell
//	         Matched: ErrUnknownType
//
//	CHR001 - Reserved character: A text value holds the comment or splitter character
//	         Action: Remove the character from the cell named in the error
//	         Matched: *IllegalCharacterError
//
//	CELL001 - Bad cell: A cell does not parse as its declared type
//	          Action: Correct the cell named in the error
//	          Matched: *CellParsingError
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Connection refused: Unable to connect to the model database
//	SRC002 - Timeout: The database did not answer in time
//	SRC003 - Worksheet not found: A requested worksheet is not in the workbook
//	SRC004 - Not a workbook: The input could not be opened as a workbook
//	SRC005 - No such table: A queried table does not exist
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Unsupported extension: The file type is not supported
//	FILE002 - File not found: The input file does not exist
//	FILE003 - File too large: The upload exceeds the size limit
//	FILE004 - No file: No workbook was attached to the request
//
// # Server Errors (SRV001-SRV099)
//
//	SRV001 - Server busy: Every conversion slot stayed occupied
//	         Action: Retry after a short delay
//	         Patterns: "too many concurrent"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Run again with -v and check the log file
//
// The first matching pattern wins, so more specific patterns come first.

package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/anseconv/internal/schema"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgConfiguration = UserMessage{
		Message: "The schema file is missing a section or holds a bad value",
		Action:  "Fix the section named in the error and run again",
		Code:    "CFG001",
	}
	msgUnmatched = UserMessage{
		Message: "No definition of the row's type accepts its cells",
		Action:  "Compare the row against the layouts listed in the error",
		Code:    "REC001",
	}
	msgUnknownType = UserMessage{
		Message: "The schema has no definition for the row's type",
		Action:  "Add the type to the schema or correct the type cell",
		Code:    "REC002",
	}
	msgIllegalChar = UserMessage{
		Message: "A text value holds the comment or splitter character",
		Action:  "Remove the character from the cell named in the error",
		Code:    "CHR001",
	}
	msgCell = UserMessage{
		Message: "A cell does not parse as its declared type",
		Action:  "Correct the cell named in the error",
		Code:    "CELL001",
	}
)

// errorPatterns maps technical error text (case-insensitive) to user messages.
// Order matters: specific patterns before general ones.
var errorPatterns = []errorPattern{
	// Schema file
	{
		pattern: "read schema",
		msg: UserMessage{
			Message: "The schema file could not be read",
			Action:  "Check the schema path",
			Code:    "CFG002",
		},
	},

	// Sources
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the model database",
			Action:  "Check the database URL and that the server is running",
			Code:    "SRC001",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The database did not answer in time",
			Action:  "Please try again",
			Code:    "SRC002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The database did not answer in time",
			Action:  "Please try again",
			Code:    "SRC002",
		},
	},
	{
		pattern: "worksheet not found",
		msg: UserMessage{
			Message: "A requested worksheet is not in the workbook",
			Action:  "Check the worksheet names passed with -w",
			Code:    "SRC003",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The input could not be opened as a workbook",
			Action:  "Save the file as .xlsx and try again",
			Code:    "SRC004",
		},
	},
	{
		pattern: "no such table",
		msg: UserMessage{
			Message: "A queried table does not exist",
			Action:  "Check that the model file is complete",
			Code:    "SRC005",
		},
	},

	// Files
	{
		pattern: "unsupported extension",
		msg: UserMessage{
			Message: "The file type is not supported",
			Action:  "Use .xlsx workbooks, .json/.yaml schemas and .in/.xlsx outputs",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The input file does not exist",
			Action:  "Check the path and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The upload exceeds the size limit",
			Action:  "Split the workbook or raise UPLOAD_MAX_SIZE",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No workbook was attached to the request",
			Action:  "Send the workbook in the multipart field \"file\"",
			Code:    "FILE004",
		},
	},

	// Server
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "Every conversion slot is in use",
			Action:  "Retry after a short delay",
			Code:    "SRV001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Run again with -v and check the log file",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Typed errors are checked first, then the known patterns; if nothing
// matches, the generic ERR000 message is returned.
//
// Example:
//
//	msg := MapError(&UnmatchedRecordError{Type: "WIDGET", Known: true})
//	// msg.Code == "REC001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		cfgErr  *schema.ConfigurationError
		charErr *IllegalCharacterError
		unmErr  *UnmatchedRecordError
		cellErr *CellParsingError
	)
	switch {
	case errors.As(err, &cfgErr):
		return msgConfiguration
	case errors.As(err, &charErr):
		return msgIllegalChar
	case errors.Is(err, ErrUnknownType):
		return msgUnknownType
	case errors.As(err, &unmErr):
		return msgUnmatched
	case errors.As(err, &cellErr):
		return msgCell
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps a technical error to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
