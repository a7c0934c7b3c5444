// Package ledger holds the pure amortization math: deriving a repayment
// schedule from loan terms and folding a payment history into balance state.
// It touches no storage and keeps no state of its own.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-service/internal/domain"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
)

// Schedule is the immutable repayment plan fixed at loan creation.
type Schedule struct {
	TotalPayable       decimal.Decimal
	MonthlyInstallment decimal.Decimal
}

// Balance is the derived repayment state of a loan at a point in time.
// Outstanding is signed: negative means overpayment.
type Balance struct {
	AmountPaid       decimal.Decimal
	Outstanding      decimal.Decimal
	InstallmentsLeft int64
	PaidOff          bool
}

// ComputeSchedule derives the total payable and monthly installment using
// simple (non-compounding) interest:
//
//	total = principal + principal * years * (rate / 100)
//	emi   = total / (years * 12)
//
// No rounding is applied; callers decide display precision.
func ComputeSchedule(principal, yearlyRatePercent decimal.Decimal, termYears int) (Schedule, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return Schedule{}, fmt.Errorf("ComputeSchedule: principal: %w", domain.ErrInvalidAmount)
	}
	if termYears <= 0 {
		return Schedule{}, fmt.Errorf("ComputeSchedule: %w", domain.ErrInvalidTerm)
	}
	if yearlyRatePercent.IsNegative() {
		return Schedule{}, fmt.Errorf("ComputeSchedule: %w", domain.ErrInvalidRate)
	}

	years := decimal.NewFromInt(int64(termYears))
	interest := principal.Mul(years).Mul(yearlyRatePercent.Div(hundred))
	total := principal.Add(interest)

	return Schedule{
		TotalPayable:       total,
		MonthlyInstallment: total.Div(years.Mul(monthsPerYear)),
	}, nil
}

// ComputeBalance folds a payment history into the signed outstanding balance,
// the remaining installment count, and the payoff flag.
func ComputeBalance(totalPayable, monthlyInstallment decimal.Decimal, payments []decimal.Decimal) (Balance, error) {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p)
	}
	return BalanceFromPaid(totalPayable, monthlyInstallment, paid)
}

// BalanceFromPaid is ComputeBalance for callers that already hold the summed
// payment total (e.g. a SUM() pulled from storage).
func BalanceFromPaid(totalPayable, monthlyInstallment, amountPaid decimal.Decimal) (Balance, error) {
	if monthlyInstallment.LessThanOrEqual(decimal.Zero) {
		return Balance{}, fmt.Errorf("BalanceFromPaid: %w", domain.ErrCorruptSchedule)
	}

	outstanding := totalPayable.Sub(amountPaid)

	// Installments remaining clamp the balance at zero; the signed value is
	// still reported so overpayment stays visible.
	clamped := outstanding
	if clamped.IsNegative() {
		clamped = decimal.Zero
	}

	return Balance{
		AmountPaid:       amountPaid,
		Outstanding:      outstanding,
		InstallmentsLeft: clamped.Div(monthlyInstallment).Ceil().IntPart(),
		PaidOff:          outstanding.LessThanOrEqual(decimal.Zero),
	}, nil
}
