package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRemoveCrumb(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		tolerance string
		want      string
	}{
		{"within tolerance above", "2.0000001", "0.001", "2"},
		{"within tolerance below", "2.9995", "0.001", "3"},
		{"outside tolerance", "2.4", "0.001", "2.4"},
		{"exactly at tolerance", "5.25", "0.25", "5"},
		{"negative value", "-7.0004", "0.001", "-7"},
		{"zero tolerance keeps fraction", "1.5", "0", "1.5"},
		{"zero tolerance keeps integer", "4", "0", "4"},
		{"half rounds to even", "2.5", "0.5", "2"},
		{"half rounds to even upward", "3.5", "0.5", "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveCrumb(decimal.RequireFromString(tt.value), decimal.RequireFromString(tt.tolerance))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

// The crumb law: the result is either the rounded value or the input itself.
func TestRemoveCrumb_Law(t *testing.T) {
	tol := decimal.RequireFromString("0.01")
	for _, s := range []string{"0.001", "0.5", "10.009", "10.011", "-3.333", "99.995"} {
		v := decimal.RequireFromString(s)
		got := RemoveCrumb(v, tol)
		r := v.RoundBank(0)
		if r.Sub(v).Abs().LessThanOrEqual(tol) {
			assert.True(t, got.Equal(r), "%s", s)
		} else {
			assert.True(t, got.Equal(v), "%s", s)
		}
	}
}
