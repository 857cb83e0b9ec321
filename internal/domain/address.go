package domain

import (
	"fmt"
	"strings"
)

// Address identifies an account that can fund or receive native value.
// Stored lowercase, 0x-prefixed, 20 bytes of hex.
type Address string

const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress normalizes and validates an account address.
func ParseAddress(s string) (Address, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "0x") || len(s) != 42 {
		return "", fmt.Errorf("invalid address %q", s)
	}
	for _, c := range s[2:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("invalid address %q", s)
		}
	}
	return Address(s), nil
}

// IsZero reports whether the address is empty or the zero address.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

func (a Address) String() string { return string(a) }
