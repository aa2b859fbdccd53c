package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLabel(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{-3, ""},
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
		{16384, "XFD"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColumnLabel(tt.n), "ColumnLabel(%d)", tt.n)
	}
}

func TestColumnIndex_RoundTrip(t *testing.T) {
	for n := 1; n <= 20000; n++ {
		got, err := ColumnIndex(ColumnLabel(n))
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestColumnIndex(t *testing.T) {
	n, err := ColumnIndex("aa")
	require.NoError(t, err)
	assert.Equal(t, 27, n)

	for _, bad := range []string{"", "A1", "Ä", "-"} {
		_, err := ColumnIndex(bad)
		assert.Error(t, err, "ColumnIndex(%q)", bad)
	}
}

func TestCellRef(t *testing.T) {
	assert.Equal(t, "C7", CellRef(3, 7))
	assert.Equal(t, "AA1", CellRef(27, 1))
}
