package repository

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrBookingNotPaid      = errors.New("booking is not in paid status")
	ErrInsufficientBalance = errors.New("insufficient credit balance")
)
