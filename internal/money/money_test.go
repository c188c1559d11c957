package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"0", 0},
		{"1", 100},
		{"1.5", 150},
		{"1.50", 150},
		{"1,250.75", 125075},
		{"-3.25", -325},
		{".99", 99},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1.2.3"} {
		_, err := Parse(in)
		require.ErrorIs(t, err, ErrMalformedAmount, in)
	}
}

func TestVAT(t *testing.T) {
	// 7% of 100.00 baht
	require.Equal(t, Money(700), VAT(FromBaht(100)))
	// 7% of 0.50 baht = 3.5 satang, rounds half up to 4
	require.Equal(t, Money(4), VAT(Money(50)))
	require.Equal(t, Money(0), VAT(0))
}

func TestVATNoDriftAcrossSplit(t *testing.T) {
	// Tax on the summed subtotal must equal tax computed once, however the
	// payment is later split.
	subtotal := FromBaht(999)
	total := subtotal + VAT(subtotal)
	part1 := total / 3
	part2 := total - 2*part1
	require.Equal(t, total, part1+part1+part2)
}

func TestMulQty(t *testing.T) {
	require.Equal(t, Money(50000), FromBaht(250).MulQty(2))
	require.Equal(t, Money(0), FromBaht(99).MulQty(0))
	require.Equal(t, Money(-300), Money(-100).MulQty(3))
}

func TestString(t *testing.T) {
	require.Equal(t, "1234.05", Money(123405).String())
	require.Equal(t, "-0.99", Money(-99).String())
	require.Equal(t, "0.00", Money(0).String())
}

func TestFromFloat(t *testing.T) {
	require.Equal(t, Money(125075), FromFloat(1250.75))
	require.Equal(t, Money(-325), FromFloat(-3.25))
	require.Equal(t, 1250.75, Money(125075).Float())
}
