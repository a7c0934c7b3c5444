package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendcore/loan-service/internal/domain"
	"github.com/lendcore/loan-service/internal/testutil"
)

func TestPaymentOrderingWithEqualTimestamps(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	testutil.SeedCustomer(t, db, "cust001", "John Doe")
	loan := testutil.SeedLoan(t, db, "cust001",
		decimal.RequireFromString("120000"),
		decimal.RequireFromString("144000"),
		decimal.RequireFromString("10"),
		decimal.RequireFromString("6000"),
		2,
	)

	repo := NewPaymentRepository(db)
	paidAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Two payments at the exact same instant: insertion order must decide.
	first := &domain.Payment{ID: uuid.New(), LoanID: loan.ID, Amount: decimal.RequireFromString("6000"), Type: domain.PaymentTypeEMI, PaidAt: paidAt}
	second := &domain.Payment{ID: uuid.New(), LoanID: loan.ID, Amount: decimal.RequireFromString("1500"), Type: domain.PaymentTypeLumpSum, PaidAt: paidAt}

	for _, p := range []*domain.Payment{first, second} {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, tx, p))
		require.NoError(t, tx.Commit())
	}
	assert.Greater(t, second.Seq, first.Seq)

	payments, err := repo.ListByLoanID(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, first.ID, payments[0].ID)
	assert.Equal(t, second.ID, payments[1].ID)

	totals, err := repo.TotalsByLoanIDs(ctx, []uuid.UUID{loan.ID})
	require.NoError(t, err)
	assert.True(t, totals[loan.ID].Equal(decimal.RequireFromString("7500")))
}

func TestAmountsForLoanSeesUncommittedInsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	testutil.SeedCustomer(t, db, "cust001", "John Doe")
	loan := testutil.SeedLoan(t, db, "cust001",
		decimal.RequireFromString("120000"),
		decimal.RequireFromString("144000"),
		decimal.RequireFromString("10"),
		decimal.RequireFromString("6000"),
		2,
	)

	repo := NewPaymentRepository(db)
	loans := NewLoanRepository(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	locked, err := loans.GetForUpdate(ctx, tx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusActive, locked.Status)

	payment := &domain.Payment{
		ID:     uuid.New(),
		LoanID: loan.ID,
		Amount: decimal.RequireFromString("144000"),
		Type:   domain.PaymentTypeLumpSum,
		PaidAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, tx, payment))

	// The snapshot inside the transaction includes the fresh insert.
	amounts, err := repo.AmountsForLoan(ctx, tx, loan.ID)
	require.NoError(t, err)
	require.Len(t, amounts, 1)
	assert.True(t, amounts[0].Equal(payment.Amount))

	require.NoError(t, loans.UpdateStatus(ctx, tx, loan.ID, domain.LoanStatusPaidOff))
	require.NoError(t, tx.Commit())

	updated, err := loans.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPaidOff, updated.Status)
}
