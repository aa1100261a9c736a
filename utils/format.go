package utils

import (
	"strings"

	"github.com/holiman/uint256"
)

// FormatAmount renders a base-unit amount with decimals digits after the point,
// dropping trailing zeros: 1500000 with 6 decimals is "1.5".
func FormatAmount(amount *uint256.Int, decimals uint8) string {
	s := Uint256ToString(amount)
	if decimals == 0 {
		return s
	}
	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	whole, frac := s[:len(s)-d], strings.TrimRight(s[len(s)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
