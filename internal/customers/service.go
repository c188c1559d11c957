package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Repository defines data access for customers.
type Repository interface {
	Create(ctx context.Context, input CustomerInput) (*Customer, error)
	Update(ctx context.Context, customerID string, input CustomerInput) error
	Delete(ctx context.Context, customerID string) error
	Get(ctx context.Context, customerID string) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	HasOpenBills(ctx context.Context, customerID string) (bool, error)
}

// Service handles customer registry business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(input CustomerInput) error {
	if strings.TrimSpace(input.CustomerID) == "" {
		return fmt.Errorf("%w: customer id is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: customer name is required", httpx.ErrValidation)
	}
	if input.CreditLimit < 0 {
		return fmt.Errorf("%w: credit limit must not be negative", httpx.ErrValidation)
	}
	if input.CreditDays < 0 {
		return fmt.Errorf("%w: credit days must not be negative", httpx.ErrValidation)
	}
	return nil
}

// Create registers a new customer with zero debt.
func (s *Service) Create(ctx context.Context, input CustomerInput) (*Customer, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, input.CustomerID)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return nil, fmt.Errorf("check existing customer: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: customer %s already registered", httpx.ErrDuplicate, input.CustomerID)
	}
	return s.repo.Create(ctx, input)
}

// Update edits customer profile and credit terms.
func (s *Service) Update(ctx context.Context, customerID string, input CustomerInput) (*Customer, error) {
	input.CustomerID = customerID
	if err := s.validate(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, customerID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, customerID, input); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, customerID)
}

// Delete removes a customer. Blocked while any credit bill is still
// PENDING or PARTIAL.
func (s *Service) Delete(ctx context.Context, customerID string) error {
	customer, err := s.repo.Get(ctx, customerID)
	if err != nil {
		return err
	}
	open, err := s.repo.HasOpenBills(ctx, customerID)
	if err != nil {
		return fmt.Errorf("check open bills: %w", err)
	}
	if open {
		return fmt.Errorf("%w: customer %s owes %s across unpaid bills", httpx.ErrOutstandingBalance, customerID, customer.TotalDebt)
	}
	return s.repo.Delete(ctx, customerID)
}

// Get returns a single customer.
func (s *Service) Get(ctx context.Context, customerID string) (*Customer, error) {
	return s.repo.Get(ctx, customerID)
}

// List returns all customers ordered by name.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.List(ctx)
}
