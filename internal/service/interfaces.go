package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-service/internal/domain"
)

type customerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

type loanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Loan, error)
	GetByCustomerID(ctx context.Context, customerID string) ([]domain.Loan, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.LoanStatus) error
}

type paymentRepository interface {
	Create(ctx context.Context, tx *sql.Tx, payment *domain.Payment) error
	ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]domain.Payment, error)
	AmountsForLoan(ctx context.Context, tx *sql.Tx, loanID uuid.UUID) ([]decimal.Decimal, error)
	TotalsByLoanIDs(ctx context.Context, loanIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}
