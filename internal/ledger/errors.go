package ledger

import "errors"

var (
	// ErrInvalidAmount rejects a booking funded with zero or negative value.
	ErrInvalidAmount = errors.New("booking value must be positive")
	// ErrSelfBooking rejects a host booking their own experience.
	ErrSelfBooking = errors.New("host cannot book own experience")
	// ErrUnauthorized rejects a caller that is not the required party.
	ErrUnauthorized = errors.New("caller is not permitted to perform this operation")
	// ErrInvalidState rejects an operation outside the booking's required status.
	ErrInvalidState = errors.New("booking is not in the required status")
)
