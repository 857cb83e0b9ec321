package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrEmptyEventRun   = errors.New("event run reference is required")
	ErrRateLimited     = errors.New("too many booking attempts")
)
