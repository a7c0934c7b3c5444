package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendcore/loan-service/internal/domain"
	"github.com/lendcore/loan-service/internal/repository"
	"github.com/lendcore/loan-service/internal/testutil"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupLoanTest(t *testing.T) (*sql.DB, *LoanService, *CustomerService) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	customerRepo := repository.NewCustomerRepository(db)
	loanSvc := NewLoanService(
		repository.NewLoanRepository(db),
		repository.NewPaymentRepository(db),
		customerRepo,
		db,
	)
	return db, loanSvc, NewCustomerService(customerRepo)
}

func TestCreateLoan(t *testing.T) {
	db, loanSvc, _ := setupLoanTest(t)
	ctx := context.Background()

	testutil.SeedCustomer(t, db, "cust001", "John Doe")

	loan, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{
		CustomerID:        "cust001",
		Principal:         d("120000"),
		TermYears:         2,
		YearlyRatePercent: d("10"),
	})
	require.NoError(t, err)

	assert.True(t, loan.TotalAmount.Equal(d("144000")), "total amount: got %s", loan.TotalAmount)
	assert.True(t, loan.MonthlyEMI.Equal(d("6000")), "monthly emi: got %s", loan.MonthlyEMI)
	assert.Equal(t, domain.LoanStatusActive, loan.Status)

	// A fresh loan has an empty ledger paying back the full schedule.
	view, err := loanSvc.GetLedger(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, view.AmountPaid.IsZero())
	assert.True(t, view.BalanceAmount.Equal(d("144000")))
	assert.EqualValues(t, 24, view.InstallmentsLeft)
	assert.Empty(t, view.Transactions)
}

func TestCreateLoanUnknownCustomer(t *testing.T) {
	_, loanSvc, _ := setupLoanTest(t)

	_, err := loanSvc.CreateLoan(context.Background(), CreateLoanRequest{
		CustomerID:        "ghost",
		Principal:         d("1000"),
		TermYears:         1,
		YearlyRatePercent: d("5"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateLoanInvalidInput(t *testing.T) {
	db, loanSvc, _ := setupLoanTest(t)
	ctx := context.Background()

	testutil.SeedCustomer(t, db, "cust001", "John Doe")

	_, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{
		CustomerID:        "cust001",
		Principal:         d("0"),
		TermYears:         2,
		YearlyRatePercent: d("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = loanSvc.CreateLoan(ctx, CreateLoanRequest{
		CustomerID:        "cust001",
		Principal:         d("1000"),
		TermYears:         0,
		YearlyRatePercent: d("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTerm)
}

func TestRecordPaymentUntilPaidOff(t *testing.T) {
	db, loanSvc, _ := setupLoanTest(t)
	ctx := context.Background()

	testutil.SeedCustomer(t, db, "cust001", "John Doe")
	loan, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{
		CustomerID:        "cust001",
		Principal:         d("120000"),
		TermYears:         2,
		YearlyRatePercent: d("10"),
	})
	require.NoError(t, err)

	result, err := loanSvc.RecordPayment(ctx, loan.ID, d("6000"), domain.PaymentTypeEMI)
	require.NoError(t, err)
	assert.True(t, result.RemainingBalance.Equal(d("138000")), "balance: got %s", result.RemainingBalance)
	assert.EqualValues(t, 23, result.InstallmentsLeft)
	assert.Equal(t, domain.LoanStatusActive, testutil.GetLoanStatus(t, db, loan.ID))

	result, err = loanSvc.RecordPayment(ctx, loan.ID, d("138000"), domain.PaymentTypeLumpSum)
	require.NoError(t, err)
	assert.True(t, result.RemainingBalance.IsZero(), "balance: got %s", result.RemainingBalance)
	assert.EqualValues(t, 0, result.InstallmentsLeft)
	assert.Equal(t, domain.LoanStatusPaidOff, testutil.GetLoanStatus(t, db, loan.ID))

	// Further payments are accepted and the status never reverts.
	result, err = loanSvc.RecordPayment(ctx, loan.ID, d("100"), domain.PaymentTypeLumpSum)
	require.NoError(t, err)
	assert.True(t, result.RemainingBalance.Equal(d("-100")), "balance: got %s", result.RemainingBalance)
	assert.Equal(t, domain.LoanStatusPaidOff, testutil.GetLoanStatus(t, db, loan.ID))
}

func TestRecordPaymentConcurrentPayoff(t *testing.T) {
	db, loanSvc, _ := setupLoanTest(t)
	ctx := context.Background()

	testutil.SeedCustomer(t, db, "cust001", "John Doe")
	loan, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{
		CustomerID:        "cust001",
		Principal:         d("120000"),
		TermYears:         2,
		YearlyRatePercent: d("10"),
	})
	require.NoError(t, err)

	// 24 installments of 6000 settle the 144000 schedule exactly. Fired
	// concurrently, the row lock must serialize them so no payment reads
	// a stale total.
	const workers = 24
	results := make([]*PaymentResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = loanSvc.RecordPayment(ctx, loan.ID, d("6000"), domain.PaymentTypeEMI)
		}(i)
	}
	wg.Wait()

	settled := 0
	seen := map[string]bool{}
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "payment %d", i)
		balance := results[i].RemainingBalance.String()
		assert.False(t, seen[balance], "two payments observed the same balance %s", balance)
		seen[balance] = true
		if results[i].RemainingBalance.IsZero() {
			settled++
		}
	}
	assert.Equal(t, 1, settled, "exactly one payment settles the loan")

	view, err := loanSvc.GetLedger(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, view.Transactions, workers)
	assert.True(t, view.AmountPaid.Equal(d("144000")), "amount paid: got %s", view.AmountPaid)
	assert.True(t, view.BalanceAmount.IsZero(), "balance: got %s", view.BalanceAmount)
	assert.EqualValues(t, 0, view.InstallmentsLeft)
	assert.Equal(t, domain.LoanStatusPaidOff, testutil.GetLoanStatus(t, db, loan.ID))
}

func TestRecordPaymentUnknownLoan(t *testing.T) {
	_, loanSvc, _ := setupLoanTest(t)

	_, err := loanSvc.RecordPayment(context.Background(), uuid.New(), d("100"), domain.PaymentTypeEMI)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordPaymentInvalidInput(t *testing.T) {
	_, loanSvc, _ := setupLoanTest(t)
	ctx := context.Background()

	_, err := loanSvc.RecordPayment(ctx, uuid.New(), d("0"), domain.PaymentTypeEMI)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = loanSvc.RecordPayment(ctx, uuid.New(), d("100"), domain.PaymentType("CHEQUE"))
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentType)
}

func TestGetLedgerOrderingAndIdempotence(t *testing.T) {
	db, loanSvc, _ := setupLoanTest(t)
	ctx := context.Background()

	testutil.SeedCustomer(t, db, "cust001", "John Doe")
	loan, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{
		CustomerID:        "cust001",
		Principal:         d("120000"),
		TermYears:         2,
		YearlyRatePercent: d("10"),
	})
	require.NoError(t, err)

	amounts := []string{"6000", "1500", "6000"}
	for _, a := range amounts {
		_, err := loanSvc.RecordPayment(ctx, loan.ID, d(a), domain.PaymentTypeEMI)
		require.NoError(t, err)
	}

	view, err := loanSvc.GetLedger(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, view.Transactions, 3)
	for i, tx := range view.Transactions {
		assert.True(t, tx.Amount.Equal(d(amounts[i])), "transaction %d: got %s", i, tx.Amount)
		if i > 0 {
			prev := view.Transactions[i-1]
			assert.False(t, tx.PaidAt.Before(prev.PaidAt))
			assert.Greater(t, tx.Seq, prev.Seq, "insertion order must break timestamp ties")
		}
	}
	assert.True(t, view.AmountPaid.Equal(d("13500")))
	assert.True(t, view.BalanceAmount.Equal(d("130500")))

	again, err := loanSvc.GetLedger(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, view, again)
}

func TestGetCustomerOverview(t *testing.T) {
	db, loanSvc, _ := setupLoanTest(t)
	ctx := context.Background()

	testutil.SeedCustomer(t, db, "cust001", "John Doe")
	testutil.SeedCustomer(t, db, "cust002", "Jane Smith")

	first, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{
		CustomerID:        "cust001",
		Principal:         d("120000"),
		TermYears:         2,
		YearlyRatePercent: d("10"),
	})
	require.NoError(t, err)

	second, err := loanSvc.CreateLoan(ctx, CreateLoanRequest{
		CustomerID:        "cust001",
		Principal:         d("24000"),
		TermYears:         1,
		YearlyRatePercent: d("0"),
	})
	require.NoError(t, err)

	_, err = loanSvc.RecordPayment(ctx, first.ID, d("6000"), domain.PaymentTypeEMI)
	require.NoError(t, err)

	overview, err := loanSvc.GetCustomerOverview(ctx, "cust001")
	require.NoError(t, err)
	assert.Equal(t, "cust001", overview.CustomerID)
	assert.Equal(t, 2, overview.TotalLoans)
	require.Len(t, overview.Loans, 2)

	byID := map[uuid.UUID]LoanSummary{}
	for _, l := range overview.Loans {
		byID[l.LoanID] = l
	}

	withPayment := byID[first.ID]
	assert.True(t, withPayment.TotalInterest.Equal(d("24000")))
	assert.True(t, withPayment.AmountPaid.Equal(d("6000")))
	assert.EqualValues(t, 23, withPayment.InstallmentsLeft)

	untouched := byID[second.ID]
	assert.True(t, untouched.TotalInterest.IsZero())
	assert.True(t, untouched.AmountPaid.IsZero())
	assert.EqualValues(t, 12, untouched.InstallmentsLeft)

	// A customer without loans gets an empty, non-error overview.
	empty, err := loanSvc.GetCustomerOverview(ctx, "cust002")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalLoans)
	assert.Empty(t, empty.Loans)
}

func TestGetCustomerOverviewUnknownCustomer(t *testing.T) {
	_, loanSvc, _ := setupLoanTest(t)

	_, err := loanSvc.GetCustomerOverview(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateCustomerConflict(t *testing.T) {
	_, _, customerSvc := setupLoanTest(t)
	ctx := context.Background()

	_, err := customerSvc.CreateCustomer(ctx, "cust001", "John Doe")
	require.NoError(t, err)

	_, err = customerSvc.CreateCustomer(ctx, "cust001", "Someone Else")
	assert.ErrorIs(t, err, domain.ErrCustomerExists)
}

func TestCustomerLookups(t *testing.T) {
	_, _, customerSvc := setupLoanTest(t)
	ctx := context.Background()

	_, err := customerSvc.GetCustomer(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = customerSvc.CreateCustomer(ctx, "cust001", "John Doe")
	require.NoError(t, err)
	_, err = customerSvc.CreateCustomer(ctx, "cust002", "Jane Smith")
	require.NoError(t, err)

	customer, err := customerSvc.GetCustomer(ctx, "cust001")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", customer.Name)

	customers, err := customerSvc.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 2)
}
