package admin

import "errors"

var (
	ErrNotOwner         = errors.New("caller is not the platform owner")
	ErrConfigOutOfRange = errors.New("configuration value out of range")
	ErrZeroAddress      = errors.New("zero address not allowed")
)
