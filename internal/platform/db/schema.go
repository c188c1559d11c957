package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Monetary columns are BIGINT satang. Quantities are integers and are kept
// non-negative by a check constraint in addition to the ledger-side guard.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		barcode TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		price BIGINT NOT NULL,
		cost BIGINT NOT NULL,
		quantity INT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		unit TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		reorder_point INT NOT NULL DEFAULT 0,
		supplier TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		credit_limit BIGINT NOT NULL DEFAULT 0 CHECK (credit_limit >= 0),
		credit_days INT NOT NULL DEFAULT 0 CHECK (credit_days >= 0),
		total_debt BIGINT NOT NULL DEFAULT 0 CHECK (total_debt >= 0),
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		transaction_id TEXT NOT NULL UNIQUE,
		sold_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		subtotal BIGINT NOT NULL,
		vat BIGINT NOT NULL,
		grand_total BIGINT NOT NULL,
		received_amount BIGINT NOT NULL,
		change_amount BIGINT NOT NULL,
		items JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales_counter (
		id INT PRIMARY KEY CHECK (id = 1),
		next_seq BIGINT NOT NULL
	)`,
	`INSERT INTO sales_counter (id, next_seq) VALUES (1, 1) ON CONFLICT (id) DO NOTHING`,
	`CREATE TABLE IF NOT EXISTS credit_bills (
		bill_id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES customers(customer_id),
		transaction_id TEXT NOT NULL DEFAULT '',
		bill_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		due_date DATE NOT NULL,
		total_amount BIGINT NOT NULL CHECK (total_amount > 0),
		paid_amount BIGINT NOT NULL DEFAULT 0 CHECK (paid_amount >= 0),
		remaining_amount BIGINT NOT NULL CHECK (remaining_amount >= 0),
		status TEXT NOT NULL DEFAULT 'PENDING',
		payment_date TIMESTAMPTZ,
		notes TEXT NOT NULL DEFAULT '',
		CHECK (paid_amount + remaining_amount = total_amount)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_bills_customer ON credit_bills (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_bills_status_due ON credit_bills (status, due_date)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		action TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		meta JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the tables the service needs when they are missing.
// Safe to run on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: ensure schema: %w", err)
		}
	}
	return nil
}
