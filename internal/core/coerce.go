package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/anseconv/internal/schema"
)

// Coercer turns raw cell text into tokens under the schema's format options.
// It holds no per-row state and is safe to share.
type Coercer struct {
	opts  schema.FormatOptions
	style TokenStyle
}

// NewCoercer binds format options and a token style.
func NewCoercer(opts schema.FormatOptions, style TokenStyle) *Coercer {
	return &Coercer{opts: opts, style: style}
}

// Coerce converts one raw value for one field. Failures are *CellParsingError
// with Field, Value and Err set; the caller fills in the location.
func (c *Coercer) Coerce(value string, spec schema.FieldSpec) (Token, error) {
	if isEmptyCell(value) {
		if def, ok := spec.DefaultValue(); ok {
			return Token{Text: def, Type: spec.Type, Defaulted: true}, nil
		}
		if !spec.Mandatory {
			return Token{Type: spec.Type}, nil
		}
		return Token{}, c.fail(spec, "", ErrMissingMandatory)
	}

	v := strings.TrimSpace(value)
	switch spec.Type {
	case schema.FieldBoolean:
		return c.coerceBool(v, spec)
	case schema.FieldInteger:
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return Token{}, c.fail(spec, v, ErrNotInteger)
		}
		return Token{Text: strconv.FormatInt(n, 10), Type: spec.Type}, nil
	case schema.FieldDouble:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return Token{}, c.fail(spec, v, ErrNotDouble)
		}
		d = RemoveCrumb(d, c.opts.MinCrumb)
		return Token{Text: d.String(), Type: spec.Type}, nil
	default:
		for _, reserved := range []string{c.opts.Comment, c.opts.Splitter} {
			if reserved != "" && strings.Contains(v, reserved) {
				err := c.fail(spec, v, ErrIllegalCharacter)
				err.Char = reserved
				return Token{}, err
			}
		}
		return Token{Text: v, Type: spec.Type}, nil
	}
}

func (c *Coercer) coerceBool(v string, spec schema.FieldSpec) (Token, error) {
	var truth bool
	switch strings.ToUpper(v) {
	case "TRUE":
		truth = true
	case "FALSE":
	default:
		return Token{}, c.fail(spec, v, ErrNotBoolean)
	}

	text := "0"
	switch {
	case c.style == GridTokens && truth:
		text = "TRUE"
	case c.style == GridTokens:
		text = "FALSE"
	case truth:
		text = "1"
	}
	return Token{Text: text, Type: spec.Type}, nil
}

func (c *Coercer) fail(spec schema.FieldSpec, value string, cause error) *CellParsingError {
	return &CellParsingError{Layout: -1, Field: spec.Name, Value: value, Err: cause}
}
