package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount      = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrInvalidTerm        = &AppError{http.StatusBadRequest, "INVALID_TERM", "Loan period must be a positive number of years"}
	ErrInvalidRate        = &AppError{http.StatusBadRequest, "INVALID_RATE", "Interest rate must not be negative"}
	ErrInvalidPaymentType = &AppError{http.StatusBadRequest, "INVALID_PAYMENT_TYPE", "Payment type must be EMI or LUMP_SUM"}
	ErrCustomerExists     = &AppError{http.StatusConflict, "CUSTOMER_ALREADY_EXISTS", "A customer with this identifier already exists"}
)
