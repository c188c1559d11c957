package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Repo provides PostgreSQL backed persistence for customers.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const customerColumns = `customer_id, name, phone, email, address, credit_limit, credit_days, total_debt, notes, created_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.CustomerID, &c.Name, &c.Phone, &c.Email, &c.Address,
		&c.CreditLimit, &c.CreditDays, &c.TotalDebt, &c.Notes, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customers: %w", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a customer row with zero debt.
func (r *Repo) Create(ctx context.Context, input CustomerInput) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO customers (customer_id, name, phone, email, address, credit_limit, credit_days, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+customerColumns,
		input.CustomerID, input.Name, input.Phone, input.Email, input.Address,
		input.CreditLimit, input.CreditDays, input.Notes)
	return scanCustomer(row)
}

// Update edits profile and credit-term fields. total_debt is untouched.
func (r *Repo) Update(ctx context.Context, customerID string, input CustomerInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET name=$1, phone=$2, email=$3, address=$4, credit_limit=$5, credit_days=$6, notes=$7 WHERE customer_id=$8`,
		input.Name, input.Phone, input.Email, input.Address,
		input.CreditLimit, input.CreditDays, input.Notes, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customers: customer %s: %w", customerID, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes a customer row.
func (r *Repo) Delete(ctx context.Context, customerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE customer_id=$1`, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customers: customer %s: %w", customerID, httpx.ErrNotFound)
	}
	return nil
}

// Get fetches one customer.
func (r *Repo) Get(ctx context.Context, customerID string) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE customer_id=$1`, customerID)
	return scanCustomer(row)
}

// List returns all customers ordered by name.
func (r *Repo) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.CustomerID, &c.Name, &c.Phone, &c.Email, &c.Address,
			&c.CreditLimit, &c.CreditDays, &c.TotalDebt, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// HasOpenBills reports whether the customer still owes on any bill.
func (r *Repo) HasOpenBills(ctx context.Context, customerID string) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM credit_bills WHERE customer_id=$1 AND status IN ('PENDING','PARTIAL')`, customerID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
