package lead

import "errors"

var (
	ErrNotFound          = errors.New("lead not found")
	ErrInvalidStatus     = errors.New("invalid lead status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidStep       = errors.New("invalid wizard step")
	ErrMobileLocked      = errors.New("mobile number is locked; reset the OTP flow to edit it")

	ErrPaymentNotFound = errors.New("payment session not found")
	ErrPaymentSettled  = errors.New("payment session already settled")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
)
