package customers

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

type memoryCustomerRepo struct {
	customers map[string]*Customer
	openBills map[string]bool
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{customers: make(map[string]*Customer), openBills: make(map[string]bool)}
}

func (r *memoryCustomerRepo) Create(ctx context.Context, input CustomerInput) (*Customer, error) {
	c := &Customer{
		CustomerID:  input.CustomerID,
		Name:        input.Name,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		CreditLimit: input.CreditLimit,
		CreditDays:  input.CreditDays,
		Notes:       input.Notes,
		CreatedAt:   time.Now(),
	}
	r.customers[c.CustomerID] = c
	return c, nil
}

func (r *memoryCustomerRepo) Update(ctx context.Context, customerID string, input CustomerInput) error {
	c, ok := r.customers[customerID]
	if !ok {
		return fmt.Errorf("customers: %w", httpx.ErrNotFound)
	}
	c.Name = input.Name
	c.Phone = input.Phone
	c.Email = input.Email
	c.Address = input.Address
	c.CreditLimit = input.CreditLimit
	c.CreditDays = input.CreditDays
	c.Notes = input.Notes
	return nil
}

func (r *memoryCustomerRepo) Delete(ctx context.Context, customerID string) error {
	if _, ok := r.customers[customerID]; !ok {
		return fmt.Errorf("customers: %w", httpx.ErrNotFound)
	}
	delete(r.customers, customerID)
	return nil
}

func (r *memoryCustomerRepo) Get(ctx context.Context, customerID string) (*Customer, error) {
	c, ok := r.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("customers: %w", httpx.ErrNotFound)
	}
	return c, nil
}

func (r *memoryCustomerRepo) List(ctx context.Context) ([]Customer, error) {
	var out []Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryCustomerRepo) HasOpenBills(ctx context.Context, customerID string) (bool, error) {
	return r.openBills[customerID], nil
}

func TestCreateCustomer(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	c, err := svc.Create(ctx, CustomerInput{
		CustomerID:  "C001",
		Name:        "Somchai",
		CreditLimit: money.FromBaht(5000),
		CreditDays:  30,
	})
	require.NoError(t, err)
	require.Equal(t, money.Money(0), c.TotalDebt)
	require.Equal(t, money.FromBaht(5000), c.AvailableCredit())
}

func TestCreateCustomerDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	_, err := svc.Create(ctx, CustomerInput{CustomerID: "C001", Name: "Somchai"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CustomerInput{CustomerID: "C001", Name: "Somsak"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateCustomerNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	_, err := svc.Update(ctx, "missing", CustomerInput{Name: "X"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteCustomerWithOpenBills(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCustomerRepo()
	svc := NewService(repo)

	_, err := svc.Create(ctx, CustomerInput{CustomerID: "C001", Name: "Somchai"})
	require.NoError(t, err)
	repo.customers["C001"].TotalDebt = money.FromBaht(800)
	repo.openBills["C001"] = true

	err = svc.Delete(ctx, "C001")
	require.ErrorIs(t, err, httpx.ErrOutstandingBalance)
	require.Contains(t, err.Error(), "800.00")

	repo.openBills["C001"] = false
	repo.customers["C001"].TotalDebt = 0
	require.NoError(t, svc.Delete(ctx, "C001"))
}

func TestListOrderedByName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCustomerRepo())

	for _, name := range []string{"Charlie", "Alice", "Bob"} {
		_, err := svc.Create(ctx, CustomerInput{CustomerID: name, Name: name})
		require.NoError(t, err)
	}
	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Bob", "Charlie"}, []string{all[0].Name, all[1].Name, all[2].Name})
}
