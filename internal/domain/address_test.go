package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Address
		wantErr bool
	}{
		{
			name: "lowercase passthrough",
			in:   "0xabcdef0123456789abcdef0123456789abcdef01",
			want: "0xabcdef0123456789abcdef0123456789abcdef01",
		},
		{
			name: "normalizes case and whitespace",
			in:   "  0xABCDEF0123456789abcdef0123456789ABCDEF01 ",
			want: "0xabcdef0123456789abcdef0123456789abcdef01",
		},
		{
			name: "zero address is valid",
			in:   "0x0000000000000000000000000000000000000000",
			want: ZeroAddress,
		},
		{name: "empty", in: "", wantErr: true},
		{name: "missing prefix", in: "abcdef0123456789abcdef0123456789abcdef0101", wantErr: true},
		{name: "too short", in: "0xabcdef", wantErr: true},
		{name: "too long", in: "0xabcdef0123456789abcdef0123456789abcdef0123", wantErr: true},
		{name: "non-hex characters", in: "0xzzcdef0123456789abcdef0123456789abcdef01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddressIsZero(t *testing.T) {
	assert.True(t, Address("").IsZero())
	assert.True(t, ZeroAddress.IsZero())
	assert.False(t, Address("0xabcdef0123456789abcdef0123456789abcdef01").IsZero())
}

func TestBookingTerminal(t *testing.T) {
	b := &Booking{Status: BookingPaid}
	assert.False(t, b.Terminal())

	b.Status = BookingSettled
	assert.True(t, b.Terminal())

	b.Status = BookingCancelled
	assert.True(t, b.Terminal())
}
