package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/lendcore/loan-service/internal/domain"
	"github.com/lendcore/loan-service/internal/logging"
)

type customerService interface {
	CreateCustomer(ctx context.Context, id, name string) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

type CustomerHandler struct {
	customers customerService
}

func NewCustomerHandler(customers customerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type createCustomerRequest struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
}

func (r createCustomerRequest) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(r.CustomerID) == "" {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}

	return errs
}

type customerDTO struct {
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

func toCustomerDTO(c *domain.Customer) customerDTO {
	return customerDTO{
		CustomerID: c.ID,
		Name:       c.Name,
		CreatedAt:  c.CreatedAt,
	}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		RespondValidationError(w, errs)
		return
	}

	customer, err := h.customers.CreateCustomer(r.Context(), req.CustomerID, req.Name)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create customer", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toCustomerDTO(customer))
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["customer_id"]

	customer, err := h.customers.GetCustomer(r.Context(), customerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get customer", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCustomerDTO(customer))
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.ListCustomers(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list customers", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]customerDTO, len(customers))
	for i := range customers {
		dtos[i] = toCustomerDTO(&customers[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}
