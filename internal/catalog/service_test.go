package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

type memoryCatalogRepo struct {
	products map[string]*Product
	nextID   int64
}

func newMemoryCatalogRepo() *memoryCatalogRepo {
	return &memoryCatalogRepo{products: make(map[string]*Product)}
}

func (r *memoryCatalogRepo) Create(ctx context.Context, input ProductInput) (*Product, error) {
	r.nextID++
	p := &Product{
		ID:           r.nextID,
		Barcode:      input.Barcode,
		Title:        input.Title,
		Price:        input.Price,
		Cost:         input.Cost,
		Quantity:     input.Quantity,
		Unit:         input.Unit,
		Category:     input.Category,
		ReorderPoint: input.ReorderPoint,
		Supplier:     input.Supplier,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.products[p.Barcode] = p
	return p, nil
}

func (r *memoryCatalogRepo) Update(ctx context.Context, barcode string, input ProductInput) error {
	p, ok := r.products[barcode]
	if !ok {
		return fmt.Errorf("catalog: product %s: %w", barcode, httpx.ErrNotFound)
	}
	p.Title = input.Title
	p.Price = input.Price
	p.Cost = input.Cost
	p.Quantity = input.Quantity
	p.Unit = input.Unit
	p.Category = input.Category
	p.ReorderPoint = input.ReorderPoint
	p.Supplier = input.Supplier
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memoryCatalogRepo) Delete(ctx context.Context, barcode string) error {
	if _, ok := r.products[barcode]; !ok {
		return fmt.Errorf("catalog: product %s: %w", barcode, httpx.ErrNotFound)
	}
	delete(r.products, barcode)
	return nil
}

func (r *memoryCatalogRepo) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	p, ok := r.products[barcode]
	if !ok {
		return nil, fmt.Errorf("catalog: product %s: %w", barcode, httpx.ErrNotFound)
	}
	return p, nil
}

func (r *memoryCatalogRepo) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		if filter.Search != "" && !strings.Contains(p.Title, filter.Search) && !strings.Contains(p.Barcode, filter.Search) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, len(out), nil
}

func (r *memoryCatalogRepo) ListLowStock(ctx context.Context) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if p.NeedsRestock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	p, err := svc.Create(ctx, ProductInput{
		Barcode:  "8850001",
		Title:    "Drinking Water 600ml",
		Price:    money.FromBaht(10),
		Cost:     money.FromBaht(7),
		Quantity: 48,
		Unit:     "bottle",
	})
	require.NoError(t, err)
	require.Equal(t, "8850001", p.Barcode)
	require.Equal(t, money.FromBaht(10), p.Price)
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	_, err := svc.Create(ctx, ProductInput{Barcode: "001", Title: "A", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.Create(ctx, ProductInput{Barcode: "001", Title: "B", Quantity: 1})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateProductRejectsNegativeQuantity(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	_, err := svc.Create(ctx, ProductInput{Barcode: "001", Title: "A", Quantity: -1})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateProductNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	_, err := svc.Update(ctx, "missing", ProductInput{Barcode: "missing", Title: "X"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListLowStock(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCatalogRepo()
	svc := NewService(repo)

	_, err := svc.Create(ctx, ProductInput{Barcode: "001", Title: "Plenty", Quantity: 50, ReorderPoint: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ProductInput{Barcode: "002", Title: "Scarce", Quantity: 3, ReorderPoint: 5})
	require.NoError(t, err)

	low, err := svc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "002", low[0].Barcode)
}
