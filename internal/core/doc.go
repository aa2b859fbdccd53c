// Package core is the record matching and value coercion engine.
//
// It knows nothing about workbooks, databases or output files. A data source
// hands the [Matcher] one [Row] at a time; the matcher looks up the candidate
// layouts for the row's declared type and returns the first [MatchedRecord]
// whose every field coerces, ready for a sink to serialize.
//
// # Matching
//
// Layouts (overloads) are tried strictly in schema declaration order. A layout
// is rejected at its first failing cell:
//
//   - an empty cell for a mandatory field with no default
//   - a value that does not parse as the field's declared type
//   - a String/Text value holding the comment or splitter character
//   - any non-empty cell past the layout's last field (strict arity)
//
// A rejected layout is not an error for the caller; the matcher moves to the
// next candidate. Only when every layout is rejected does [Matcher.Match]
// return an [UnmatchedRecordError] carrying the reason for each layout.
//
// # Tokens
//
// Coerced values are [Token]s: normalized text plus the field type that
// produced them. Booleans render as 1/0 for declaration text ([TextTokens])
// and TRUE/FALSE for spreadsheet cells ([GridTokens]); every other type
// renders the same in both styles.
//
// # Error Handling
//
// Errors are typed so presentation layers can use errors.As:
//
//   - [CellParsingError]: one cell under one layout, recovered by fallback
//   - [UnmatchedRecordError]: no layout matched a row, fatal
//   - [IllegalCharacterError]: a reserved character sank every layout, fatal
//
// [MapError] turns any of them (and schema or source errors) into a coded
// [UserMessage] for display.
package core
