package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the API surface under /api/v1. Middleware is layered on by
// the caller.
func NewRouter(customers *CustomerHandler, loans *LoanHandler, health *HealthHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", health.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/ready", health.Readiness).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/customers", customers.List).Methods(http.MethodGet)
	api.HandleFunc("/customers", customers.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers/{customer_id}", customers.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/customers/{customer_id}/overview", loans.GetCustomerOverview).Methods(http.MethodGet)
	api.HandleFunc("/loans", loans.Create).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loan_id}/payments", loans.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loan_id}/ledger", loans.GetLedger).Methods(http.MethodGet)

	return r
}
