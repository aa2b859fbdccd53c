package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/anseconv/internal/schema"
)

func testOptions() schema.FormatOptions {
	opts := schema.DefaultFormatOptions()
	opts.MinCrumb = decimal.RequireFromString("0.001")
	return opts
}

func field(name string, typ schema.FieldType, mandatory bool) schema.FieldSpec {
	return schema.FieldSpec{Name: name, Type: typ, Mandatory: mandatory}
}

func withDefault(f schema.FieldSpec, def string) schema.FieldSpec {
	f.Default = &def
	return f
}

func TestCoerce_Values(t *testing.T) {
	text := NewCoercer(testOptions(), TextTokens)
	grid := NewCoercer(testOptions(), GridTokens)

	tests := []struct {
		name     string
		value    string
		spec     schema.FieldSpec
		wantText string
		wantGrid string
	}{
		{"boolean true lower", "true", field("on", schema.FieldBoolean, true), "1", "TRUE"},
		{"boolean false mixed", " False ", field("on", schema.FieldBoolean, true), "0", "FALSE"},
		{"integer", " 42 ", field("n", schema.FieldInteger, true), "42", "42"},
		{"integer leading zeros", "007", field("n", schema.FieldInteger, true), "7", "7"},
		{"integer negative", "-12", field("n", schema.FieldInteger, true), "-12", "-12"},
		{"integer 32-bit bounds", "-2147483648", field("n", schema.FieldInteger, true), "-2147483648", "-2147483648"},
		{"double plain", "3.25", field("x", schema.FieldDouble, true), "3.25", "3.25"},
		{"double crumb removed", "2.0000001", field("x", schema.FieldDouble, true), "2", "2"},
		{"double scientific", "1.5e3", field("x", schema.FieldDouble, true), "1500", "1500"},
		{"double small scientific", "2.5E-2", field("x", schema.FieldDouble, true), "0.025", "0.025"},
		{"string trimmed", "  heavy  ", field("s", schema.FieldString, true), "heavy", "heavy"},
		{"text kept inner spaces", "a  b", field("s", schema.FieldText, true), "a  b", "a  b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := text.Coerce(tt.value, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.spec.Type, got.Type)

			got, err = grid.Coerce(tt.value, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantGrid, got.Text)
		})
	}
}

func TestCoerce_EmptyCells(t *testing.T) {
	c := NewCoercer(testOptions(), TextTokens)

	t.Run("default used verbatim after trim", func(t *testing.T) {
		tok, err := c.Coerce("", withDefault(field("w", schema.FieldDouble, true), "  0.0 "))
		require.NoError(t, err)
		assert.Equal(t, "0.0", tok.Text)
		assert.True(t, tok.Defaulted)
	})

	t.Run("default is not coerced", func(t *testing.T) {
		tok, err := c.Coerce("", withDefault(field("on", schema.FieldBoolean, false), "TRUE"))
		require.NoError(t, err)
		assert.Equal(t, "TRUE", tok.Text)
	})

	t.Run("blank default counts as none", func(t *testing.T) {
		_, err := c.Coerce("", withDefault(field("w", schema.FieldDouble, true), "   "))
		assert.ErrorIs(t, err, ErrMissingMandatory)
	})

	t.Run("optional yields empty token", func(t *testing.T) {
		tok, err := c.Coerce("   ", field("s", schema.FieldString, false))
		require.NoError(t, err)
		assert.True(t, tok.Empty())
	})

	t.Run("whitespace cell takes the default", func(t *testing.T) {
		tok, err := c.Coerce(" \t ", withDefault(field("label", schema.FieldString, true), "none"))
		require.NoError(t, err)
		assert.Equal(t, "none", tok.Text)
		assert.True(t, tok.Defaulted)
	})

	t.Run("whitespace cell is missing when mandatory", func(t *testing.T) {
		_, err := c.Coerce("  ", field("label", schema.FieldString, true))
		assert.ErrorIs(t, err, ErrMissingMandatory)
	})

	t.Run("mandatory fails", func(t *testing.T) {
		_, err := c.Coerce("", field("id", schema.FieldInteger, true))
		require.ErrorIs(t, err, ErrMissingMandatory)

		var cpe *CellParsingError
		require.True(t, errors.As(err, &cpe))
		assert.Equal(t, "id", cpe.Field)
	})
}

func TestCoerce_Rejections(t *testing.T) {
	c := NewCoercer(testOptions(), TextTokens)

	tests := []struct {
		name  string
		value string
		spec  schema.FieldSpec
		want  error
	}{
		{"boolean yes", "yes", field("on", schema.FieldBoolean, true), ErrNotBoolean},
		{"boolean digit", "1", field("on", schema.FieldBoolean, true), ErrNotBoolean},
		{"integer fraction", "1.5", field("n", schema.FieldInteger, true), ErrNotInteger},
		{"integer word", "five", field("n", schema.FieldInteger, true), ErrNotInteger},
		{"integer overflow", "99999999999999999999", field("n", schema.FieldInteger, true), ErrNotInteger},
		{"integer above 32 bits", "3000000000", field("n", schema.FieldInteger, true), ErrNotInteger},
		{"double word", "heavy", field("x", schema.FieldDouble, true), ErrNotDouble},
		{"double comma decimal", "1,5", field("x", schema.FieldDouble, true), ErrNotDouble},
		{"string splitter", "a;b", field("s", schema.FieldString, true), ErrIllegalCharacter},
		{"text comment", "note # here", field("s", schema.FieldText, false), ErrIllegalCharacter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Coerce(tt.value, tt.spec)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCoerce_IllegalCharacterReported(t *testing.T) {
	c := NewCoercer(testOptions(), GridTokens)

	_, err := c.Coerce("x;y", field("label", schema.FieldString, true))
	var cpe *CellParsingError
	require.True(t, errors.As(err, &cpe))
	assert.Equal(t, ";", cpe.Char)
	assert.Equal(t, "x;y", cpe.Value)
}
