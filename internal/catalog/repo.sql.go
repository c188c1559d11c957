package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Repo provides PostgreSQL backed persistence for products.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const productColumns = `id, barcode, title, price, cost, quantity, unit, category, reorder_point, supplier, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Barcode, &p.Title, &p.Price, &p.Cost, &p.Quantity,
		&p.Unit, &p.Category, &p.ReorderPoint, &p.Supplier, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("catalog: %w", httpx.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a product row.
func (r *Repo) Create(ctx context.Context, input ProductInput) (*Product, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO products (barcode, title, price, cost, quantity, unit, category, reorder_point, supplier)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING `+productColumns,
		input.Barcode, input.Title, input.Price, input.Cost, input.Quantity,
		input.Unit, input.Category, input.ReorderPoint, input.Supplier)
	return scanProduct(row)
}

// Update replaces product fields for the given barcode.
func (r *Repo) Update(ctx context.Context, barcode string, input ProductInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET title=$1, price=$2, cost=$3, quantity=$4, unit=$5, category=$6, reorder_point=$7, supplier=$8, updated_at=now() WHERE barcode=$9`,
		input.Title, input.Price, input.Cost, input.Quantity, input.Unit,
		input.Category, input.ReorderPoint, input.Supplier, barcode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("catalog: product %s: %w", barcode, httpx.ErrNotFound)
	}
	return nil
}

// Delete removes a product row.
func (r *Repo) Delete(ctx context.Context, barcode string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE barcode=$1`, barcode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("catalog: product %s: %w", barcode, httpx.ErrNotFound)
	}
	return nil
}

// GetByBarcode fetches one product.
func (r *Repo) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode=$1`, barcode)
	return scanProduct(row)
}

// List returns products matching the filter and the unpaginated total.
func (r *Repo) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	where := "WHERE TRUE"
	args := []any{}
	argPos := 1
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (barcode ILIKE $%d OR title ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}
	if filter.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, filter.Category)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY title LIMIT $%d OFFSET $%d", productColumns, where, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Barcode, &p.Title, &p.Price, &p.Cost, &p.Quantity,
			&p.Unit, &p.Category, &p.ReorderPoint, &p.Supplier, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// ListLowStock returns products at or below their reorder point.
func (r *Repo) ListLowStock(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE quantity <= reorder_point ORDER BY quantity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Barcode, &p.Title, &p.Price, &p.Cost, &p.Quantity,
			&p.Unit, &p.Category, &p.ReorderPoint, &p.Supplier, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
