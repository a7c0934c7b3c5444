package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendcore/loan-service/internal/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCustomerCreateDuplicateIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec(`INSERT INTO customers`).
		WithArgs("cust001", "John Doe", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &domain.Customer{
		ID:        "cust001",
		Name:      "John Doe",
		CreatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrCustomerExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerCreateOtherErrorPassesThrough(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec(`INSERT INTO customers`).
		WillReturnError(&pq.Error{Code: "53300"})

	err := repo.Create(context.Background(), &domain.Customer{
		ID:        "cust001",
		Name:      "John Doe",
		CreatedAt: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCustomerExists)
}

func TestCustomerGetByIDMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM customers WHERE customer_id`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerGetByIDScansRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM customers WHERE customer_id`).
		WithArgs("cust001").
		WillReturnRows(sqlmock.NewRows([]string{"customer_id", "name", "created_at"}).
			AddRow("cust001", "John Doe", created))

	customer, err := repo.GetByID(context.Background(), "cust001")
	require.NoError(t, err)
	assert.Equal(t, "cust001", customer.ID)
	assert.Equal(t, "John Doe", customer.Name)
	assert.Equal(t, created, customer.CreatedAt)
}
