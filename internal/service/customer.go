package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lendcore/loan-service/internal/domain"
	"github.com/lendcore/loan-service/internal/logging"
)

type CustomerService struct {
	customers customerRepository
}

func NewCustomerService(customers customerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// CreateCustomer registers a customer under a caller-supplied identifier.
// A duplicate identifier is a conflict, never a silent overwrite.
func (s *CustomerService) CreateCustomer(ctx context.Context, id, name string) (*domain.Customer, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("CreateCustomer: %w", domain.ErrInvalidRequest)
	}

	customer := &domain.Customer{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}

	logging.FromContext(ctx).Info("customer created", "customer_id", customer.ID)
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCustomer: %w", err)
	}
	return customer, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCustomers: %w", err)
	}
	return customers, nil
}
