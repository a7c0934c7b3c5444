package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/lendcore/loan-service/internal/domain"
)

const paymentColumns = `id, loan_id, amount, payment_type, paid_at, seq`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment inside tx. The database assigns the insertion
// sequence number, which is read back into the record.
func (r *PaymentRepository) Create(ctx context.Context, tx *sql.Tx, payment *domain.Payment) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO payments (id, loan_id, amount, payment_type, paid_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq`,
		payment.ID, payment.LoanID, payment.Amount, payment.Type, payment.PaidAt,
	).Scan(&payment.Seq)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListByLoanID returns a loan's payments ordered by payment time, with the
// insertion sequence breaking timestamp ties.
func (r *PaymentRepository) ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE loan_id = $1 ORDER BY paid_at, seq`, loanID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByLoanID: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByLoanID: scan: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByLoanID: rows: %w", err)
	}
	return payments, nil
}

// AmountsForLoan returns all payment amounts for a loan, read inside tx so
// the caller sees a snapshot consistent with its own insert.
func (r *PaymentRepository) AmountsForLoan(ctx context.Context, tx *sql.Tx, loanID uuid.UUID) ([]decimal.Decimal, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT amount FROM payments WHERE loan_id = $1 ORDER BY paid_at, seq`, loanID,
	)
	if err != nil {
		return nil, fmt.Errorf("AmountsForLoan: %w", err)
	}
	defer rows.Close()

	var amounts []decimal.Decimal
	for rows.Next() {
		var a decimal.Decimal
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("AmountsForLoan: scan: %w", err)
		}
		amounts = append(amounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("AmountsForLoan: rows: %w", err)
	}
	return amounts, nil
}

// TotalsByLoanIDs sums payments per loan in one round trip. Loans with no
// payments are absent from the map.
func (r *PaymentRepository) TotalsByLoanIDs(ctx context.Context, loanIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	ids := make([]string, len(loanIDs))
	for i, id := range loanIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT loan_id, COALESCE(SUM(amount), 0)
		FROM payments WHERE loan_id = ANY($1::uuid[]) GROUP BY loan_id`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("TotalsByLoanIDs: %w", err)
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]decimal.Decimal, len(loanIDs))
	for rows.Next() {
		var loanID uuid.UUID
		var total decimal.Decimal
		if err := rows.Scan(&loanID, &total); err != nil {
			return nil, fmt.Errorf("TotalsByLoanIDs: scan: %w", err)
		}
		totals[loanID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TotalsByLoanIDs: rows: %w", err)
	}
	return totals, nil
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	err := s.Scan(&p.ID, &p.LoanID, &p.Amount, &p.Type, &p.PaidAt, &p.Seq)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
