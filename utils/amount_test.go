package utils

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want *uint256.Int
	}{
		{"0", uint256.NewInt(0)},
		{"1000", uint256.NewInt(1000)},
		{"1_000_000", uint256.NewInt(1_000_000)},
		{" 42 ", uint256.NewInt(42)},
		{"0x10", uint256.NewInt(16)},
		{"0X10", uint256.NewInt(16)},
		{"007", uint256.NewInt(7)},
		{"0x0a", uint256.NewInt(10)},
		{"0x000A", uint256.NewInt(10)},
		{"0x00", uint256.NewInt(0)},
		{"0x0", uint256.NewInt(0)},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	maxDec := new(uint256.Int).SetAllOne().Dec()
	got, err := ParseAmount(maxDec)
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).SetAllOne(), got)

	got, err = ParseAmount("0x00" + new(uint256.Int).SetAllOne().Hex()[2:])
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).SetAllOne(), got)
}

func TestParseAmountRejects(t *testing.T) {
	// 2^256
	tooBig := "115792089237316195423570985008687907853269984665640564039457584007913129639936"
	for _, in := range []string{"", "-1", "abc", "1.5", tooBig, "0xzz", "0x", "0x-1", "0x1" + strings.Repeat("0", 64)} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestUint256ToString(t *testing.T) {
	assert.Equal(t, "0", Uint256ToString(nil))
	assert.Equal(t, "900", Uint256ToString(uint256.NewInt(900)))
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   *uint256.Int
		decimals uint8
		want     string
	}{
		{uint256.NewInt(1_500_000), 6, "1.5"},
		{uint256.NewInt(1_000_000), 6, "1"},
		{uint256.NewInt(42), 6, "0.000042"},
		{uint256.NewInt(0), 18, "0"},
		{uint256.NewInt(1234), 0, "1234"},
		{nil, 2, "0"},
		{new(uint256.Int).SetAllOne(), 77, "1.15792089237316195423570985008687907853269984665640564039457584007913129639935"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatAmount(tc.amount, tc.decimals))
	}
}
