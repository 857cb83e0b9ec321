package query

import "errors"

var ErrBookingNotFound = errors.New("booking not found")
