package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-service/internal/domain"
	"github.com/lendcore/loan-service/internal/ledger"
	"github.com/lendcore/loan-service/internal/logging"
)

// LoanService orchestrates the ledger math over the record store. All
// mutations to a loan run inside a single database transaction.
type LoanService struct {
	loans     loanRepository
	payments  paymentRepository
	customers customerRepository
	db        *sql.DB
}

func NewLoanService(loans loanRepository, payments paymentRepository, customers customerRepository, db *sql.DB) *LoanService {
	return &LoanService{
		loans:     loans,
		payments:  payments,
		customers: customers,
		db:        db,
	}
}

type CreateLoanRequest struct {
	CustomerID        string
	Principal         decimal.Decimal
	TermYears         int
	YearlyRatePercent decimal.Decimal
}

func (s *LoanService) CreateLoan(ctx context.Context, req CreateLoanRequest) (*domain.Loan, error) {
	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("CreateLoan: customer %q: %w", req.CustomerID, err)
	}

	schedule, err := ledger.ComputeSchedule(req.Principal, req.YearlyRatePercent, req.TermYears)
	if err != nil {
		return nil, fmt.Errorf("CreateLoan: %w", err)
	}

	loan := &domain.Loan{
		ID:           uuid.New(),
		CustomerID:   req.CustomerID,
		Principal:    req.Principal,
		TotalAmount:  schedule.TotalPayable,
		InterestRate: req.YearlyRatePercent,
		TermYears:    req.TermYears,
		MonthlyEMI:   schedule.MonthlyInstallment,
		Status:       domain.LoanStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("CreateLoan: %w", err)
	}

	logging.FromContext(ctx).Info("loan created",
		"loan_id", loan.ID,
		"customer_id", loan.CustomerID,
		"principal", loan.Principal,
		"total_amount", loan.TotalAmount,
		"monthly_emi", loan.MonthlyEMI,
	)

	return loan, nil
}

type PaymentResult struct {
	PaymentID        uuid.UUID
	LoanID           uuid.UUID
	RemainingBalance decimal.Decimal
	InstallmentsLeft int64
}

// RecordPayment appends a payment and recomputes the balance from the
// transactionally consistent payment set, flipping the loan to PAID_OFF when
// the balance reaches zero. The loan row is locked for the duration, so two
// concurrent payments cannot both decide the status from a stale total.
func (s *LoanService) RecordPayment(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, paymentType domain.PaymentType) (*PaymentResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("RecordPayment: %w", domain.ErrInvalidAmount)
	}
	if !paymentType.IsValid() {
		return nil, fmt.Errorf("RecordPayment: %q: %w", paymentType, domain.ErrInvalidPaymentType)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("RecordPayment: begin tx: %w", err)
	}
	defer tx.Rollback()

	loan, err := s.loans.GetForUpdate(ctx, tx, loanID)
	if err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}

	payment := &domain.Payment{
		ID:     uuid.New(),
		LoanID: loan.ID,
		Amount: amount,
		Type:   paymentType,
		PaidAt: time.Now().UTC(),
	}
	if err := s.payments.Create(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}

	amounts, err := s.payments.AmountsForLoan(ctx, tx, loan.ID)
	if err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}

	balance, err := ledger.ComputeBalance(loan.TotalAmount, loan.MonthlyEMI, amounts)
	if err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}

	if balance.PaidOff && loan.Status == domain.LoanStatusActive {
		if err := s.loans.UpdateStatus(ctx, tx, loan.ID, domain.LoanStatusPaidOff); err != nil {
			return nil, fmt.Errorf("RecordPayment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("RecordPayment: commit: %w", err)
	}

	logging.FromContext(ctx).Info("payment recorded",
		"payment_id", payment.ID,
		"loan_id", loan.ID,
		"amount", amount,
		"payment_type", paymentType,
		"remaining_balance", balance.Outstanding,
		"paid_off", balance.PaidOff,
	)

	return &PaymentResult{
		PaymentID:        payment.ID,
		LoanID:           loan.ID,
		RemainingBalance: balance.Outstanding,
		InstallmentsLeft: balance.InstallmentsLeft,
	}, nil
}

type LedgerView struct {
	Loan             domain.Loan
	AmountPaid       decimal.Decimal
	BalanceAmount    decimal.Decimal
	InstallmentsLeft int64
	Transactions     []domain.Payment
}

func (s *LoanService) GetLedger(ctx context.Context, loanID uuid.UUID) (*LedgerView, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("GetLedger: %w", err)
	}

	payments, err := s.payments.ListByLoanID(ctx, loan.ID)
	if err != nil {
		return nil, fmt.Errorf("GetLedger: %w", err)
	}

	amounts := make([]decimal.Decimal, len(payments))
	for i, p := range payments {
		amounts[i] = p.Amount
	}

	balance, err := ledger.ComputeBalance(loan.TotalAmount, loan.MonthlyEMI, amounts)
	if err != nil {
		return nil, fmt.Errorf("GetLedger: %w", err)
	}

	return &LedgerView{
		Loan:             *loan,
		AmountPaid:       balance.AmountPaid,
		BalanceAmount:    balance.Outstanding,
		InstallmentsLeft: balance.InstallmentsLeft,
		Transactions:     payments,
	}, nil
}

type LoanSummary struct {
	LoanID           uuid.UUID
	Principal        decimal.Decimal
	TotalAmount      decimal.Decimal
	TotalInterest    decimal.Decimal
	EMIAmount        decimal.Decimal
	AmountPaid       decimal.Decimal
	InstallmentsLeft int64
}

type CustomerOverview struct {
	CustomerID string
	TotalLoans int
	Loans      []LoanSummary
}

// GetCustomerOverview summarizes every loan owned by the customer. An empty
// loan list is a valid result, not an error.
func (s *LoanService) GetCustomerOverview(ctx context.Context, customerID string) (*CustomerOverview, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("GetCustomerOverview: customer %q: %w", customerID, err)
	}

	loans, err := s.loans.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("GetCustomerOverview: %w", err)
	}

	overview := &CustomerOverview{
		CustomerID: customerID,
		TotalLoans: len(loans),
		Loans:      make([]LoanSummary, 0, len(loans)),
	}
	if len(loans) == 0 {
		return overview, nil
	}

	loanIDs := make([]uuid.UUID, len(loans))
	for i, l := range loans {
		loanIDs[i] = l.ID
	}

	totals, err := s.payments.TotalsByLoanIDs(ctx, loanIDs)
	if err != nil {
		return nil, fmt.Errorf("GetCustomerOverview: %w", err)
	}

	for _, l := range loans {
		paid, ok := totals[l.ID]
		if !ok {
			paid = decimal.Zero
		}

		balance, err := ledger.BalanceFromPaid(l.TotalAmount, l.MonthlyEMI, paid)
		if err != nil {
			return nil, fmt.Errorf("GetCustomerOverview: loan %s: %w", l.ID, err)
		}

		overview.Loans = append(overview.Loans, LoanSummary{
			LoanID:           l.ID,
			Principal:        l.Principal,
			TotalAmount:      l.TotalAmount,
			TotalInterest:    l.TotalAmount.Sub(l.Principal),
			EMIAmount:        l.MonthlyEMI,
			AmountPaid:       balance.AmountPaid,
			InstallmentsLeft: balance.InstallmentsLeft,
		})
	}

	return overview, nil
}
