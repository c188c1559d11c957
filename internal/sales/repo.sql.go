package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sabaipos/sabaipos/internal/credit"
	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/db"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

const saleColumns = `id, transaction_id, sold_at, subtotal, vat, grand_total, received_amount, change_amount, items`

// Repo provides PostgreSQL backed persistence for sales.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.TransactionID, &s.SoldAt, &s.Subtotal, &s.VAT,
		&s.GrandTotal, &s.ReceivedAmount, &s.ChangeAmount, &s.Items)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sales: transaction %w", httpx.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns one sale by its transaction id.
func (r *Repo) Get(ctx context.Context, transactionID string) (*Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE transaction_id = $1`, transactionID)
	return scanSale(row)
}

// List returns sales newest first plus the total count.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]Sale, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY sold_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	sales, err := collectSales(rows)
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// ListByDateRange returns sales in [from, to), oldest first.
func (r *Repo) ListByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales
		WHERE sold_at >= $1 AND sold_at < $2 ORDER BY sold_at`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSales(rows)
}

func collectSales(rows pgx.Rows) ([]Sale, error) {
	var sales []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (t *txRepo) NextTransactionSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := t.tx.QueryRow(ctx, `UPDATE sales_counter SET next_seq = next_seq + 1
		WHERE id = 1 RETURNING next_seq - 1`).Scan(&seq)
	return seq, err
}

func (t *txRepo) ProductForSale(ctx context.Context, barcode string) (*ProductSnapshot, error) {
	var p ProductSnapshot
	err := t.tx.QueryRow(ctx, `SELECT barcode, title, price, cost, quantity
		FROM products WHERE barcode = $1 FOR UPDATE`, barcode).
		Scan(&p.Barcode, &p.Title, &p.Price, &p.Cost, &p.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sales: product %s %w", barcode, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *txRepo) DecrementStock(ctx context.Context, barcode string, quantity int) error {
	tag, err := t.tx.Exec(ctx, `UPDATE products SET quantity = quantity - $1, updated_at = now()
		WHERE barcode = $2 AND quantity >= $1`, quantity, barcode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sales: %w for %s", httpx.ErrInsufficientStock, barcode)
	}
	return nil
}

func (t *txRepo) InsertSale(ctx context.Context, sale *Sale) error {
	return t.tx.QueryRow(ctx, `INSERT INTO sales
		(transaction_id, sold_at, subtotal, vat, grand_total, received_amount, change_amount, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		sale.TransactionID, sale.SoldAt, sale.Subtotal, sale.VAT, sale.GrandTotal,
		sale.ReceivedAmount, sale.ChangeAmount, sale.Items).Scan(&sale.ID)
}

func (t *txRepo) CustomerTermsForUpdate(ctx context.Context, customerID string) (*credit.CustomerTerms, error) {
	var terms credit.CustomerTerms
	err := t.tx.QueryRow(ctx, `SELECT credit_limit, credit_days, total_debt
		FROM customers WHERE customer_id = $1 FOR UPDATE`, customerID).
		Scan(&terms.CreditLimit, &terms.CreditDays, &terms.TotalDebt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("sales: customer %s %w", customerID, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &terms, nil
}

func (t *txRepo) InsertCreditBill(ctx context.Context, bill CreditBillRecord) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO credit_bills
		(bill_id, customer_id, transaction_id, bill_date, due_date, total_amount, paid_amount, remaining_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $6, 'PENDING')`,
		bill.BillID, bill.CustomerID, bill.TransactionID, bill.BillDate, bill.DueDate, bill.Total)
	return err
}

func (t *txRepo) AdjustDebt(ctx context.Context, customerID string, delta money.Money) error {
	tag, err := t.tx.Exec(ctx, `UPDATE customers SET total_debt = total_debt + $1
		WHERE customer_id = $2`, delta, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sales: customer %s %w", customerID, httpx.ErrNotFound)
	}
	return nil
}
