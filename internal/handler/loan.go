package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-service/internal/domain"
	"github.com/lendcore/loan-service/internal/logging"
	"github.com/lendcore/loan-service/internal/service"
)

type loanService interface {
	CreateLoan(ctx context.Context, req service.CreateLoanRequest) (*domain.Loan, error)
	RecordPayment(ctx context.Context, loanID uuid.UUID, amount decimal.Decimal, paymentType domain.PaymentType) (*service.PaymentResult, error)
	GetLedger(ctx context.Context, loanID uuid.UUID) (*service.LedgerView, error)
	GetCustomerOverview(ctx context.Context, customerID string) (*service.CustomerOverview, error)
}

type LoanHandler struct {
	loans loanService
}

func NewLoanHandler(loans loanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

// A loan id that does not parse can never match a stored loan, so it is
// reported the same way as an unknown one.
func loanIDFromPath(r *http.Request) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(mux.Vars(r)["loan_id"])
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}
	return id, nil
}

type createLoanRequest struct {
	CustomerID         string           `json:"customer_id"`
	LoanAmount         *decimal.Decimal `json:"loan_amount"`
	LoanPeriodYears    *int             `json:"loan_period_years"`
	InterestRateYearly *decimal.Decimal `json:"interest_rate_yearly"`
}

func (r createLoanRequest) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(r.CustomerID) == "" {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}

	if r.LoanAmount == nil {
		errs = append(errs, FieldError{Field: "loan_amount", Message: "required"})
	} else if r.LoanAmount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, FieldError{Field: "loan_amount", Message: "must be greater than 0"})
	}

	if r.LoanPeriodYears == nil {
		errs = append(errs, FieldError{Field: "loan_period_years", Message: "required"})
	} else if *r.LoanPeriodYears <= 0 {
		errs = append(errs, FieldError{Field: "loan_period_years", Message: "must be greater than 0"})
	}

	if r.InterestRateYearly == nil {
		errs = append(errs, FieldError{Field: "interest_rate_yearly", Message: "required"})
	} else if r.InterestRateYearly.IsNegative() {
		errs = append(errs, FieldError{Field: "interest_rate_yearly", Message: "must not be negative"})
	}

	return errs
}

type loanCreatedDTO struct {
	LoanID             uuid.UUID       `json:"loan_id"`
	CustomerID         string          `json:"customer_id"`
	TotalAmountPayable decimal.Decimal `json:"total_amount_payable"`
	MonthlyEMI         decimal.Decimal `json:"monthly_emi"`
}

func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		RespondValidationError(w, errs)
		return
	}

	loan, err := h.loans.CreateLoan(r.Context(), service.CreateLoanRequest{
		CustomerID:        req.CustomerID,
		Principal:         *req.LoanAmount,
		TermYears:         *req.LoanPeriodYears,
		YearlyRatePercent: *req.InterestRateYearly,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create loan", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, loanCreatedDTO{
		LoanID:             loan.ID,
		CustomerID:         loan.CustomerID,
		TotalAmountPayable: loan.TotalAmount,
		MonthlyEMI:         loan.MonthlyEMI,
	})
}

type recordPaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	PaymentType string           `json:"payment_type"`
}

func (r recordPaymentRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Amount == nil {
		errs = append(errs, FieldError{Field: "amount", Message: "required"})
	} else if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}

	if r.PaymentType == "" {
		errs = append(errs, FieldError{Field: "payment_type", Message: "required"})
	} else if !domain.PaymentType(r.PaymentType).IsValid() {
		errs = append(errs, FieldError{Field: "payment_type", Message: "must be EMI or LUMP_SUM"})
	}

	return errs
}

type paymentResultDTO struct {
	PaymentID        uuid.UUID       `json:"payment_id"`
	LoanID           uuid.UUID       `json:"loan_id"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	EMIsLeft         int64           `json:"emis_left"`
}

func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID, appErr := loanIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		RespondValidationError(w, errs)
		return
	}

	result, err := h.loans.RecordPayment(r.Context(), loanID, *req.Amount, domain.PaymentType(req.PaymentType))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to record payment", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, paymentResultDTO{
		PaymentID:        result.PaymentID,
		LoanID:           result.LoanID,
		RemainingBalance: result.RemainingBalance,
		EMIsLeft:         result.InstallmentsLeft,
	})
}

type transactionDTO struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
}

type ledgerDTO struct {
	LoanID        uuid.UUID        `json:"loan_id"`
	CustomerID    string           `json:"customer_id"`
	Principal     decimal.Decimal  `json:"principal"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	MonthlyEMI    decimal.Decimal  `json:"monthly_emi"`
	Status        string           `json:"status"`
	AmountPaid    decimal.Decimal  `json:"amount_paid"`
	BalanceAmount decimal.Decimal  `json:"balance_amount"`
	EMIsLeft      int64            `json:"emis_left"`
	Transactions  []transactionDTO `json:"transactions"`
}

func (h *LoanHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	loanID, appErr := loanIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	view, err := h.loans.GetLedger(r.Context(), loanID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get ledger", "error", err)
		RespondDomainError(w, err)
		return
	}

	transactions := make([]transactionDTO, len(view.Transactions))
	for i, tx := range view.Transactions {
		transactions[i] = transactionDTO{
			TransactionID: tx.ID,
			Date:          tx.PaidAt,
			Amount:        tx.Amount,
			Type:          string(tx.Type),
		}
	}

	RespondSuccess(w, http.StatusOK, ledgerDTO{
		LoanID:        view.Loan.ID,
		CustomerID:    view.Loan.CustomerID,
		Principal:     view.Loan.Principal,
		TotalAmount:   view.Loan.TotalAmount,
		MonthlyEMI:    view.Loan.MonthlyEMI,
		Status:        string(view.Loan.Status),
		AmountPaid:    view.AmountPaid,
		BalanceAmount: view.BalanceAmount,
		EMIsLeft:      view.InstallmentsLeft,
		Transactions:  transactions,
	})
}

type loanSummaryDTO struct {
	LoanID        uuid.UUID       `json:"loan_id"`
	Principal     decimal.Decimal `json:"principal"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	EMIAmount     decimal.Decimal `json:"emi_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	EMIsLeft      int64           `json:"emis_left"`
}

type overviewDTO struct {
	CustomerID string           `json:"customer_id"`
	TotalLoans int              `json:"total_loans"`
	Loans      []loanSummaryDTO `json:"loans"`
}

func (h *LoanHandler) GetCustomerOverview(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["customer_id"]

	overview, err := h.loans.GetCustomerOverview(r.Context(), customerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get customer overview", "error", err)
		RespondDomainError(w, err)
		return
	}

	loans := make([]loanSummaryDTO, len(overview.Loans))
	for i, l := range overview.Loans {
		loans[i] = loanSummaryDTO{
			LoanID:        l.LoanID,
			Principal:     l.Principal,
			TotalAmount:   l.TotalAmount,
			TotalInterest: l.TotalInterest,
			EMIAmount:     l.EMIAmount,
			AmountPaid:    l.AmountPaid,
			EMIsLeft:      l.InstallmentsLeft,
		}
	}

	RespondSuccess(w, http.StatusOK, overviewDTO{
		CustomerID: overview.CustomerID,
		TotalLoans: overview.TotalLoans,
		Loans:      loans,
	})
}
