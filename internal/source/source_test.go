package source

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestCellText(t *testing.T) {
	tests := []struct {
		name    string
		v       any
		boolCol bool
		want    string
	}{
		{"nil", nil, false, ""},
		{"string kept raw", " a ", false, " a "},
		{"bytes", []byte("blob"), false, "blob"},
		{"bool", true, false, "TRUE"},
		{"int64", int64(-4), false, "-4"},
		{"int64 in bool column", int64(1), true, "TRUE"},
		{"zero in bool column", int64(0), true, "FALSE"},
		{"int32", int32(9), false, "9"},
		{"float without exponent", 1e21, false, "1000000000000000000000"},
		{"float fraction", 0.125, false, "0.125"},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), false, "2024-01-02T03:04:05Z"},
		{"numeric", pgtype.Numeric{Int: big.NewInt(1250), Exp: -2, Valid: true}, false, "12.50"},
		{"null numeric", pgtype.Numeric{}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellText(tt.v, tt.boolCol))
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"WIDGET"`, quoteIdentifier("WIDGET"))
	assert.Equal(t, `"a""b"`, quoteIdentifier(`a"b`))
}
