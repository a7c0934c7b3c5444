package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrCustomerExists     = errors.New("customer already exists")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidTerm        = errors.New("term must be a positive number of years")
	ErrInvalidRate        = errors.New("interest rate must not be negative")
	ErrInvalidPaymentType = errors.New("payment type must be EMI or LUMP_SUM")
	ErrInvalidRequest     = errors.New("invalid request")

	// ErrCorruptSchedule marks an internal invariant violation: a stored loan
	// whose monthly installment is not positive. Not caller-correctable.
	ErrCorruptSchedule = errors.New("monthly installment must be positive")
)
