package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-service/internal/domain"
)

func SeedCustomer(t *testing.T, db *sql.DB, id, name string) *domain.Customer {
	t.Helper()

	customer := &domain.Customer{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO customers (customer_id, name, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (customer_id) DO NOTHING`,
		customer.ID, customer.Name, customer.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed customer %s: %v", id, err)
	}
	return customer
}

func SeedLoan(t *testing.T, db *sql.DB, customerID string, principal, totalAmount, rate, emi decimal.Decimal, termYears int) *domain.Loan {
	t.Helper()

	loan := &domain.Loan{
		ID:           uuid.New(),
		CustomerID:   customerID,
		Principal:    principal,
		TotalAmount:  totalAmount,
		InterestRate: rate,
		TermYears:    termYears,
		MonthlyEMI:   emi,
		Status:       domain.LoanStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO loans (
			id, customer_id, principal, total_amount, interest_rate,
			term_years, monthly_emi, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		loan.ID, loan.CustomerID, loan.Principal, loan.TotalAmount, loan.InterestRate,
		loan.TermYears, loan.MonthlyEMI, loan.Status, loan.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return loan
}

func GetLoanStatus(t *testing.T, db *sql.DB, id uuid.UUID) domain.LoanStatus {
	t.Helper()

	var status domain.LoanStatus
	if err := db.QueryRow(`SELECT status FROM loans WHERE id = $1`, id).Scan(&status); err != nil {
		t.Fatalf("get loan status: %v", err)
	}
	return status
}
