package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lendcore/loan-service/internal/config"
	"github.com/lendcore/loan-service/internal/domain"
	"github.com/lendcore/loan-service/internal/handler"
	"github.com/lendcore/loan-service/internal/logging"
	"github.com/lendcore/loan-service/internal/middleware"
	"github.com/lendcore/loan-service/internal/repository"
	"github.com/lendcore/loan-service/internal/service"
)

const serviceName = "loan-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init(serviceName, cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	customerRepo := repository.NewCustomerRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	customerSvc := service.NewCustomerService(customerRepo)
	loanSvc := service.NewLoanService(loanRepo, paymentRepo, customerRepo, db)

	if cfg.SeedSampleData {
		seedSampleCustomers(customerSvc)
	}

	router := handler.NewRouter(
		handler.NewCustomerHandler(customerSvc),
		handler.NewLoanHandler(loanSvc),
		handler.NewHealthHandler(serviceName, db),
	)

	var h http.Handler = router
	h = middleware.Recovery(h)
	h = middleware.Logging(h)
	h = middleware.RequestID(h)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var lastErr error
	for i := 0; i < 30; i++ {
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", lastErr)
}

// seedSampleCustomers inserts the demo customers the frontend expects.
// Existing identifiers are left untouched.
func seedSampleCustomers(customers *service.CustomerService) {
	ctx := context.Background()
	for _, c := range []struct{ id, name string }{
		{"cust001", "John Doe"},
		{"cust002", "Jane Smith"},
	} {
		if _, err := customers.CreateCustomer(ctx, c.id, c.name); err != nil {
			if errors.Is(err, domain.ErrCustomerExists) {
				continue
			}
			slog.Warn("failed to seed customer", "customer_id", c.id, "error", err)
		}
	}
}
