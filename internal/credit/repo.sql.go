package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/db"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

const billColumns = `b.bill_id, b.customer_id, b.transaction_id, b.bill_date, b.due_date,
	b.total_amount, b.paid_amount, b.remaining_amount, b.status, b.payment_date, b.notes,
	c.name, c.phone`

// Repo provides PostgreSQL backed persistence for the credit ledger.
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

func scanBill(row rowScanner) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.BillID, &b.CustomerID, &b.TransactionID, &b.BillDate, &b.DueDate,
		&b.TotalAmount, &b.PaidAmount, &b.RemainingAmount, &b.Status, &b.PaymentDate, &b.Notes,
		&b.CustomerName, &b.CustomerPhone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("credit: bill %w", httpx.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) queryBills(ctx context.Context, query string, args ...any) ([]Bill, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bills []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bills, nil
}

// Get returns one bill joined with the customer's name and phone.
func (r *Repo) Get(ctx context.Context, billID string) (*Bill, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+billColumns+`
		FROM credit_bills b JOIN customers c ON c.customer_id = b.customer_id
		WHERE b.bill_id = $1`, billID)
	return scanBill(row)
}

// ListAll returns every bill, newest first.
func (r *Repo) ListAll(ctx context.Context) ([]Bill, error) {
	return r.queryBills(ctx, `SELECT `+billColumns+`
		FROM credit_bills b JOIN customers c ON c.customer_id = b.customer_id
		ORDER BY b.bill_date DESC`)
}

// ListOpen returns bills that still carry a balance, oldest due first.
func (r *Repo) ListOpen(ctx context.Context) ([]Bill, error) {
	return r.queryBills(ctx, `SELECT `+billColumns+`
		FROM credit_bills b JOIN customers c ON c.customer_id = b.customer_id
		WHERE b.status IN ('PENDING','PARTIAL')
		ORDER BY b.due_date`)
}

// ListOverdue returns unpaid bills whose due date has passed.
func (r *Repo) ListOverdue(ctx context.Context, asOf time.Time) ([]Bill, error) {
	return r.queryBills(ctx, `SELECT `+billColumns+`
		FROM credit_bills b JOIN customers c ON c.customer_id = b.customer_id
		WHERE b.status IN ('PENDING','PARTIAL') AND b.due_date < $1::date
		ORDER BY b.due_date`, asOf)
}

// ListByCustomer returns all bills for one customer, newest first.
func (r *Repo) ListByCustomer(ctx context.Context, customerID string) ([]Bill, error) {
	return r.queryBills(ctx, `SELECT `+billColumns+`
		FROM credit_bills b JOIN customers c ON c.customer_id = b.customer_id
		WHERE b.customer_id = $1
		ORDER BY b.bill_date DESC`, customerID)
}

// Statistics summarises open bills as of the given time. due_this_month
// is the remaining balance on bills falling due in asOf's calendar month.
func (r *Repo) Statistics(ctx context.Context, asOf time.Time) (*Statistics, error) {
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var stats Statistics
	err := r.pool.QueryRow(ctx, `SELECT
		COUNT(*) FILTER (WHERE status IN ('PENDING','PARTIAL')),
		COUNT(*) FILTER (WHERE status IN ('PENDING','PARTIAL') AND due_date < $1::date),
		COALESCE(SUM(remaining_amount) FILTER (WHERE status <> 'PAID'), 0),
		COALESCE(SUM(remaining_amount) FILTER (WHERE status <> 'PAID' AND due_date >= $2::date AND due_date < $3::date), 0)
		FROM credit_bills`, asOf, monthStart, monthEnd).
		Scan(&stats.PendingCount, &stats.OverdueCount, &stats.TotalDebt, &stats.DueThisMonth)
	if err != nil {
		return nil, err
	}
	return &stats, nil
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

func (t *txRepo) CustomerTermsForUpdate(ctx context.Context, customerID string) (*CustomerTerms, error) {
	var terms CustomerTerms
	err := t.tx.QueryRow(ctx, `SELECT credit_limit, credit_days, total_debt
		FROM customers WHERE customer_id = $1 FOR UPDATE`, customerID).
		Scan(&terms.CreditLimit, &terms.CreditDays, &terms.TotalDebt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("credit: customer %s %w", customerID, httpx.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &terms, nil
}

func (t *txRepo) InsertBill(ctx context.Context, bill Bill) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO credit_bills
		(bill_id, customer_id, transaction_id, bill_date, due_date, total_amount, paid_amount, remaining_amount, status, payment_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		bill.BillID, bill.CustomerID, bill.TransactionID, bill.BillDate, bill.DueDate,
		bill.TotalAmount, bill.PaidAmount, bill.RemainingAmount, bill.Status, bill.PaymentDate, bill.Notes)
	return err
}

func (t *txRepo) BillForUpdate(ctx context.Context, billID string) (*Bill, error) {
	var b Bill
	err := t.tx.QueryRow(ctx, `SELECT bill_id, customer_id, transaction_id, bill_date, due_date,
		total_amount, paid_amount, remaining_amount, status, payment_date, notes
		FROM credit_bills WHERE bill_id = $1 FOR UPDATE`, billID).
		Scan(&b.BillID, &b.CustomerID, &b.TransactionID, &b.BillDate, &b.DueDate,
			&b.TotalAmount, &b.PaidAmount, &b.RemainingAmount, &b.Status, &b.PaymentDate, &b.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("credit: bill %w", httpx.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *txRepo) UpdatePayment(ctx context.Context, billID string, paid, remaining money.Money, status BillStatus, paymentDate *time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE credit_bills
		SET paid_amount = $1, remaining_amount = $2, status = $3, payment_date = $4
		WHERE bill_id = $5`, paid, remaining, status, paymentDate, billID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit: bill %w", httpx.ErrNotFound)
	}
	return nil
}

func (t *txRepo) DeleteBill(ctx context.Context, billID string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM credit_bills WHERE bill_id = $1`, billID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit: bill %w", httpx.ErrNotFound)
	}
	return nil
}

func (t *txRepo) AdjustDebt(ctx context.Context, customerID string, delta money.Money) error {
	tag, err := t.tx.Exec(ctx, `UPDATE customers SET total_debt = total_debt + $1
		WHERE customer_id = $2`, delta, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("credit: customer %s %w", customerID, httpx.ErrNotFound)
	}
	return nil
}
