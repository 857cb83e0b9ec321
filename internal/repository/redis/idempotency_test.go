package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIdemBookingScoping(t *testing.T) {
	const (
		alice = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
		bob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	)

	base := KeyIdemBooking(alice, "run-42", "key-1")

	// Same caller, run, and key map to the same entry.
	assert.Equal(t, base, KeyIdemBooking(alice, "run-42", "key-1"))

	// Any differing component yields a distinct entry.
	assert.NotEqual(t, base, KeyIdemBooking(bob, "run-42", "key-1"))
	assert.NotEqual(t, base, KeyIdemBooking(alice, "run-43", "key-1"))
	assert.NotEqual(t, base, KeyIdemBooking(alice, "run-42", "key-2"))

	assert.Contains(t, base, alice)
	assert.Contains(t, base, "run-42")
}
