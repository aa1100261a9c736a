package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
)

// ParseAmount accepts a decimal string (underscores allowed as digit separators)
// or a 0x-prefixed hex string. Leading zeros are accepted in both forms.
// Negative values and values that do not fit in 256 bits are rejected.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits != "" {
			// FromHex rejects leading zero digits
			if digits = strings.TrimLeft(digits, "0"); digits == "" {
				digits = "0"
			}
		}
		v, err := uint256.FromHex("0x" + digits)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
		}
		return v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return v, nil
}

// Uint256ToString renders a balance in decimal, nil as "0"
func Uint256ToString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
