package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ConfigurationError reports a schema that cannot drive a conversion.
// It is always fatal and is raised before any row is read.
type ConfigurationError struct {
	Section string // "options", "types.WIDGET[1].weight", ...
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Section == "" {
		return "configuration: " + e.Message
	}
	return fmt.Sprintf("configuration: %s: %s", e.Section, e.Message)
}

func configErr(section, format string, args ...any) error {
	return &ConfigurationError{Section: section, Message: fmt.Sprintf(format, args...)}
}

// Load reads a schema file. The extension selects the syntax:
// .json, or .yaml/.yml.
func Load(path string) (*Schema, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, configErr("", "schema file %q must have a .json, .yaml or .yml extension", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	if ext == ".json" {
		return Parse(data)
	}
	return ParseYAML(data)
}

// Parse builds a Schema from a JSON document.
func Parse(data []byte) (*Schema, error) {
	root, err := decodeJSON(data)
	if err != nil {
		return nil, configErr("", "invalid JSON: %v", err)
	}
	return build(root)
}

// ParseYAML builds a Schema from a YAML document.
func ParseYAML(data []byte) (*Schema, error) {
	root, err := decodeYAML(data)
	if err != nil {
		return nil, configErr("", "invalid YAML: %v", err)
	}
	return build(root)
}

func build(root any) (*Schema, error) {
	doc, ok := root.(object)
	if !ok {
		return nil, configErr("", "top level must be an object")
	}

	s := &Schema{
		Options:   DefaultFormatOptions(),
		Worksheet: DefaultWorksheetMarkers(),
		types:     make(map[string][]Layout),
	}

	if v, ok := doc.get("options"); ok {
		if err := parseOptions(v, &s.Options); err != nil {
			return nil, err
		}
	}

	if v, ok := doc.get("worksheet"); ok {
		if err := parseMarkers(v, &s.Worksheet); err != nil {
			return nil, err
		}
	}

	v, ok := doc.get("types")
	if !ok || v == nil {
		return nil, configErr("types", "schema must contain type definitions")
	}
	if err := parseTypes(v, s); err != nil {
		return nil, err
	}

	if v, ok := doc.get("grouping"); ok && v != nil {
		groups, err := parseGrouping(v)
		if err != nil {
			return nil, err
		}
		s.Grouping = groups
	}

	return s, nil
}

func parseOptions(v any, opts *FormatOptions) error {
	obj, ok := v.(object)
	if !ok {
		return configErr("options", "must be an object")
	}

	for _, m := range obj {
		section := "options." + m.key
		switch m.key {
		case "comment":
			c, err := requireChars(section, m.value)
			if err != nil {
				return err
			}
			opts.Comment = c

		case "splitter":
			c, err := requireChars(section, m.value)
			if err != nil {
				return err
			}
			opts.Splitter = c

		case "delimiter":
			head, tail, err := parseDelimiter(section, m.value)
			if err != nil {
				return err
			}
			opts.DelimitHead, opts.DelimitTail = head, tail

		case "min_crumb":
			text, ok := scalarText(m.value)
			if !ok {
				return configErr(section, "must be a number")
			}
			d, err := decimal.NewFromString(strings.TrimSpace(text))
			if err != nil {
				return configErr(section, "must be a number, got %q", text)
			}
			if d.IsNegative() {
				return configErr(section, "must not be negative, got %s", d)
			}
			opts.MinCrumb = d

		case "col_offset":
			text, ok := scalarText(m.value)
			if !ok {
				return configErr(section, "must be an integer")
			}
			n, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil || n < 1 {
				return configErr(section, "must be an integer >= 1, got %q", text)
			}
			opts.ColOffset = n
		}
	}

	if opts.Comment == opts.Splitter {
		return configErr("options", "comment and splitter must differ (both %q)", opts.Comment)
	}
	return nil
}

// parseDelimiter accepts "<", "<>" or ["<", ">"].
func parseDelimiter(section string, v any) (string, string, error) {
	switch d := v.(type) {
	case string:
		switch utf8.RuneCountInString(d) {
		case 1:
			return d, d, nil
		case 2:
			r, size := utf8.DecodeRuneInString(d)
			return string(r), d[size:], nil
		default:
			return "", "", configErr(section, "string must hold one or two characters, got %q", d)
		}
	case []any:
		if len(d) != 2 {
			return "", "", configErr(section, "array must hold head and tail, got %d elements", len(d))
		}
		head, ok1 := d[0].(string)
		tail, ok2 := d[1].(string)
		if !ok1 || !ok2 || head == "" || tail == "" {
			return "", "", configErr(section, "head and tail must be non-empty strings")
		}
		return head, tail, nil
	default:
		return "", "", configErr(section, "must be a string or a [head, tail] array")
	}
}

func parseMarkers(v any, m *WorksheetMarkers) error {
	obj, ok := v.(object)
	if !ok {
		return configErr("worksheet", "must be an object")
	}
	if c, ok := obj.get("commentMarker"); ok {
		s, err := requireChars("worksheet.commentMarker", c)
		if err != nil {
			return err
		}
		m.Comment = strings.ToUpper(strings.TrimSpace(s))
	}
	if k, ok := obj.get("keywordMarker"); ok {
		s, err := requireChars("worksheet.keywordMarker", k)
		if err != nil {
			return err
		}
		m.Keyword = strings.ToUpper(strings.TrimSpace(s))
	}
	return nil
}

func parseTypes(v any, s *Schema) error {
	obj, ok := v.(object)
	if !ok {
		return configErr("types", "must be an object keyed by type name")
	}

	for _, m := range obj {
		name := strings.TrimSpace(m.key)
		section := "types." + name
		if name == "" {
			return configErr("types", "type name must not be empty")
		}
		if _, dup := s.types[name]; dup {
			return configErr(section, "type defined twice")
		}

		var raw []any
		switch t := m.value.(type) {
		case []any:
			raw = t
		case object:
			raw = []any{t}
		default:
			return configErr(section, "must be a list of layouts")
		}
		if len(raw) == 0 {
			return configErr(section, "must declare at least one layout")
		}

		layouts := make([]Layout, 0, len(raw))
		for i, lv := range raw {
			l, err := parseLayout(fmt.Sprintf("%s[%d]", section, i), lv)
			if err != nil {
				return err
			}
			layouts = append(layouts, l)
		}

		s.types[name] = layouts
		s.typeOrder = append(s.typeOrder, name)
	}
	return nil
}

func parseLayout(section string, v any) (Layout, error) {
	obj, ok := v.(object)
	if !ok {
		return Layout{}, configErr(section, "layout must be an object of fields")
	}

	l := Layout{Fields: make([]FieldSpec, 0, len(obj))}
	for _, m := range obj {
		f, err := parseField(section+"."+m.key, m.key, m.value)
		if err != nil {
			return Layout{}, err
		}
		l.Fields = append(l.Fields, f)
	}
	return l, nil
}

func parseField(section, name string, v any) (FieldSpec, error) {
	props, ok := v.(object)
	if !ok {
		return FieldSpec{}, configErr(section, "field must be an object")
	}

	f := FieldSpec{Name: name}

	tv, ok := getFold(props, "Type")
	if !ok {
		return FieldSpec{}, configErr(section, "field must declare a Type")
	}
	ts, ok := tv.(string)
	if !ok {
		return FieldSpec{}, configErr(section, "Type must be a string")
	}
	ft, err := ParseFieldType(ts)
	if err != nil {
		return FieldSpec{}, configErr(section, "%v", err)
	}
	f.Type = ft

	if dv, ok := getFold(props, "Default"); ok && dv != nil {
		text, ok := scalarText(dv)
		if !ok {
			return FieldSpec{}, configErr(section, "Default must be a scalar")
		}
		f.Default = &text
	}

	if mv, ok := getFold(props, "Mandatory"); ok && mv != nil {
		switch b := mv.(type) {
		case bool:
			f.Mandatory = b
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return FieldSpec{}, configErr(section, "Mandatory must be true or false, got %q", b)
			}
			f.Mandatory = parsed
		default:
			return FieldSpec{}, configErr(section, "Mandatory must be true or false")
		}
	}

	return f, nil
}

func parseGrouping(v any) ([]Group, error) {
	obj, ok := v.(object)
	if !ok {
		return nil, configErr("grouping", "must be an object keyed by category")
	}

	groups := make([]Group, 0, len(obj))
	for _, m := range obj {
		section := "grouping." + m.key
		list, ok := m.value.([]any)
		if !ok {
			return nil, configErr(section, "must be a list of type names")
		}
		g := Group{Category: m.key, Types: make([]string, 0, len(list))}
		for _, item := range list {
			name, ok := item.(string)
			if !ok {
				return nil, configErr(section, "type names must be strings")
			}
			g.Types = append(g.Types, strings.TrimSpace(name))
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// getFold looks a key up ignoring case; an exact match wins.
func getFold(o object, key string) (any, bool) {
	if v, ok := o.get(key); ok {
		return v, true
	}
	for _, m := range o {
		if strings.EqualFold(m.key, key) {
			return m.value, true
		}
	}
	return nil, false
}

// scalarText renders a scalar the way it appears in the document.
func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case number:
		return string(t), true
	case bool:
		if t {
			return "TRUE", true
		}
		return "FALSE", true
	default:
		return "", false
	}
}

func requireChars(section string, v any) (string, error) {
	s, ok := scalarText(v)
	if !ok || s == "" {
		return "", configErr(section, "must be a non-empty string")
	}
	return s, nil
}
