package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusActive  LoanStatus = "ACTIVE"
	LoanStatusPaidOff LoanStatus = "PAID_OFF"
)

// Loan captures the amortization state fixed at creation. TotalAmount and
// MonthlyEMI are derived once from the principal, rate, and term and stored
// immutably; only Status changes afterwards, ACTIVE -> PAID_OFF exactly once.
type Loan struct {
	ID           uuid.UUID
	CustomerID   string
	Principal    decimal.Decimal
	TotalAmount  decimal.Decimal
	InterestRate decimal.Decimal
	TermYears    int
	MonthlyEMI   decimal.Decimal
	Status       LoanStatus
	CreatedAt    time.Time
}
