package domain

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrGateway            = errors.New("payment gateway error")
	ErrStoreUnavailable   = errors.New("donation store unavailable")
	ErrDuplicateDonation  = errors.New("donation already recorded for order")
	ErrReceiptInvalid     = errors.New("invalid receipt token")
	ErrTooManySubscribers = errors.New("too many subscribers")
)
