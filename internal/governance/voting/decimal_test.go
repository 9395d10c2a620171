package voting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("0.1")
	require.Nil(t, err)
	assert.Equal(t, "100000000000000000", d.Atomics().String())
	assert.Equal(t, "0.1", d.String())

	d, err = ParseDecimal("1")
	require.Nil(t, err)
	assert.Equal(t, 0, d.Cmp(DecimalOne()))

	d, err = ParseDecimal("0.000000000000000001")
	require.Nil(t, err)
	assert.Equal(t, "1", d.Atomics().String())

	for _, bad := range []string{"", ".5", "1.", "0.0000000000000000001", "-0.5", "1e3", "abc"} {
		_, err := ParseDecimal(bad)
		assert.ErrorIs(t, err, ErrInvalidDecimal, bad)
	}
}

func TestDecimalFromRatio(t *testing.T) {
	d, err := DecimalFromRatio(7, 13)
	require.Nil(t, err)
	assert.Equal(t, "538461538461538461", d.Atomics().String())

	_, err = DecimalFromRatio(1, 0)
	assert.ErrorIs(t, err, ErrInvalidDecimal)

	assert.Equal(t, 0, DecimalPercent(50).Cmp(mustDecimal(t, "0.5")))
}

func TestDecimal_MulCeil(t *testing.T) {
	tests := []struct {
		dec    string
		amount uint64
		want   string
	}{
		{"0.1", 100, "10"},
		{"0.01", 1000000, "10000"},
		{"0.3", 10, "3"},
		{"0.33", 10, "4"},
		{"1", 13, "13"},
		{"0.5", 0, "0"},
		{"0.000000000000000001", 1, "1"},
	}
	for _, tt := range tests {
		got, err := mustDecimal(t, tt.dec).MulCeil(NewAmount(tt.amount))
		require.Nil(t, err)
		assert.Equal(t, tt.want, got.String(), "%s * %d", tt.dec, tt.amount)
	}

	ratio, err := DecimalFromRatio(7, 13)
	require.Nil(t, err)
	got, err := ratio.MulCeil(NewAmount(13))
	require.Nil(t, err)
	assert.Equal(t, "7", got.String())
}

func TestDecimal_JSON(t *testing.T) {
	d := mustDecimal(t, "0.25")
	data, err := d.MarshalJSON()
	require.Nil(t, err)
	assert.Equal(t, `"0.25"`, string(data))

	var out Decimal
	require.Nil(t, out.UnmarshalJSON(data))
	assert.Equal(t, 0, out.Cmp(d))
}

func mustDecimal(t *testing.T, s string) Decimal {
	d, err := ParseDecimal(s)
	require.Nil(t, err)
	return d
}
