// Package schema holds the typed model of a conversion schema file: the record
// types with their candidate field layouts, the formatting characters of the
// declaration text, the worksheet markers and the sheet grouping table.
//
// A Schema is built once by [Load] or [Parse] and never mutated afterwards, so
// it can be shared freely between conversion runs.
package schema

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldType is the declared target type of a field.
type FieldType int

const (
	FieldBoolean FieldType = iota
	FieldInteger
	FieldDouble
	FieldString
	FieldText
)

// String returns the name used for the type in schema files.
func (t FieldType) String() string {
	switch t {
	case FieldBoolean:
		return "Boolean"
	case FieldInteger:
		return "Integer"
	case FieldDouble:
		return "Double"
	case FieldString:
		return "String"
	case FieldText:
		return "Text"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// IsTextual reports whether values of the type are free text.
func (t FieldType) IsTextual() bool {
	return t == FieldString || t == FieldText
}

// ParseFieldType converts a schema type name to a FieldType.
// Matching ignores case and surrounding whitespace.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean":
		return FieldBoolean, nil
	case "integer":
		return FieldInteger, nil
	case "double":
		return FieldDouble, nil
	case "string":
		return FieldString, nil
	case "text":
		return FieldText, nil
	default:
		return 0, fmt.Errorf("unknown field type %q", s)
	}
}

// FieldSpec describes one field of a layout.
type FieldSpec struct {
	Name      string
	Type      FieldType
	Default   *string // nil when the schema declares no default
	Mandatory bool
}

// DefaultValue returns the trimmed default and whether a non-empty one exists.
func (f FieldSpec) DefaultValue() (string, bool) {
	if f.Default == nil {
		return "", false
	}
	d := strings.TrimSpace(*f.Default)
	return d, d != ""
}

// Layout is one candidate field arrangement (overload) for a record type.
type Layout struct {
	Fields []FieldSpec
}

// FieldNames returns the field names in declaration order.
func (l Layout) FieldNames() []string {
	names := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		names[i] = f.Name
	}
	return names
}

// FormatOptions are the formatting characters of the declaration text.
type FormatOptions struct {
	Comment     string
	DelimitHead string
	DelimitTail string
	Splitter    string
	MinCrumb    decimal.Decimal // rounding tolerance for Double values
	ColOffset   int             // 1-based column the workbook writer starts at
}

// DefaultFormatOptions returns the options used for keys a schema omits.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Comment:     "#",
		DelimitHead: "<",
		DelimitTail: ">",
		Splitter:    ";",
		MinCrumb:    decimal.Zero,
		ColOffset:   1,
	}
}

// WorksheetMarkers are the leading-cell words that tag workbook rows.
type WorksheetMarkers struct {
	Comment string
	Keyword string
}

// DefaultWorksheetMarkers returns the markers used when a schema omits them.
func DefaultWorksheetMarkers() WorksheetMarkers {
	return WorksheetMarkers{Comment: "COMMENT", Keyword: "KEYWORD"}
}

// KeywordLabel returns the decorative label written above a type block.
func (m WorksheetMarkers) KeywordLabel(typeName string) string {
	return m.Keyword + ": " + typeName
}

// Group maps a category to the record types written to its sheet.
type Group struct {
	Category string
	Types    []string
}

const (
	// SheetPrefix starts every generated input sheet name.
	SheetPrefix = "INPUTS - "
	// MiscSheet receives types that no group lists.
	MiscSheet = SheetPrefix + "MISC"
)

// Schema is the parsed conversion schema.
type Schema struct {
	Options   FormatOptions
	Worksheet WorksheetMarkers
	Grouping  []Group

	types     map[string][]Layout
	typeOrder []string
}

// Canonical resolves a record type name to its spelling in the schema.
// Surrounding space is ignored. An exact match is preferred; otherwise names
// are compared ignoring case, so a PostgreSQL table "widget" resolves to
// "WIDGET".
func (s *Schema) Canonical(typeName string) (string, bool) {
	typeName = strings.TrimSpace(typeName)
	if _, ok := s.types[typeName]; ok {
		return typeName, true
	}
	for _, name := range s.typeOrder {
		if strings.EqualFold(name, typeName) {
			return name, true
		}
	}
	return "", false
}

// Layouts returns the candidate layouts of a record type in declaration order.
// The name is resolved with Canonical.
func (s *Schema) Layouts(typeName string) ([]Layout, bool) {
	name, ok := s.Canonical(typeName)
	if !ok {
		return nil, false
	}
	return s.types[name], true
}

// TypeNames returns the defined record types in declaration order.
func (s *Schema) TypeNames() []string {
	out := make([]string, len(s.typeOrder))
	copy(out, s.typeOrder)
	return out
}

// SheetFor returns the workbook sheet a record type is written to.
// The first group listing the type wins. Names resolve as in Canonical.
func (s *Schema) SheetFor(typeName string) string {
	if name, ok := s.Canonical(typeName); ok {
		typeName = name
	}
	for _, g := range s.Grouping {
		for _, t := range g.Types {
			if strings.EqualFold(strings.TrimSpace(t), typeName) {
				return SheetPrefix + g.Category
			}
		}
	}
	return MiscSheet
}
