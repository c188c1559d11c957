package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Repository defines data access for products.
type Repository interface {
	Create(ctx context.Context, input ProductInput) (*Product, error)
	Update(ctx context.Context, barcode string, input ProductInput) error
	Delete(ctx context.Context, barcode string) error
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	ListLowStock(ctx context.Context) ([]Product, error)
}

// Service handles product catalog business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(input ProductInput) error {
	if strings.TrimSpace(input.Barcode) == "" {
		return fmt.Errorf("%w: barcode is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if input.Price < 0 || input.Cost < 0 {
		return fmt.Errorf("%w: price and cost must not be negative", httpx.ErrValidation)
	}
	if input.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", httpx.ErrValidation)
	}
	return nil
}

// Create inserts a new product after checking barcode uniqueness.
func (s *Service) Create(ctx context.Context, input ProductInput) (*Product, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByBarcode(ctx, input.Barcode)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return nil, fmt.Errorf("check existing product: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: barcode %s already registered", httpx.ErrDuplicate, input.Barcode)
	}
	return s.repo.Create(ctx, input)
}

// Update replaces product fields identified by barcode.
func (s *Service) Update(ctx context.Context, barcode string, input ProductInput) (*Product, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByBarcode(ctx, barcode); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, barcode, input); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, barcode string) error {
	if _, err := s.repo.GetByBarcode(ctx, barcode); err != nil {
		return err
	}
	return s.repo.Delete(ctx, barcode)
}

// Get returns a single product by barcode.
func (s *Service) Get(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.GetByBarcode(ctx, barcode)
}

// List returns products matching the filter plus the total count.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

// ListLowStock returns products at or below their reorder point.
func (s *Service) ListLowStock(ctx context.Context) ([]Product, error) {
	return s.repo.ListLowStock(ctx)
}
