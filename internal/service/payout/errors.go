package payout

import "errors"

var (
	ErrInvalidAmount      = errors.New("withdrawal amount must be positive")
	ErrInsufficientCredit = errors.New("insufficient credit balance")
	ErrWithdrawalFailed   = errors.New("withdrawal transfer failed")
)
