package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sabaipos/sabaipos/internal/credit"
	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
	"github.com/sabaipos/sabaipos/internal/shared"
)

// Repository defines data access for sales.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, transactionID string) (*Sale, error)
	List(ctx context.Context, limit, offset int) ([]Sale, int, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error)
}

// TxRepository exposes the operations a checkout runs in one
// transaction: the counter, the sale row, stock movements and, on
// credit sales, the bill and the customer's debt.
type TxRepository interface {
	NextTransactionSeq(ctx context.Context) (int64, error)
	ProductForSale(ctx context.Context, barcode string) (*ProductSnapshot, error)
	DecrementStock(ctx context.Context, barcode string, quantity int) error
	InsertSale(ctx context.Context, sale *Sale) error
	CustomerTermsForUpdate(ctx context.Context, customerID string) (*credit.CustomerTerms, error)
	InsertCreditBill(ctx context.Context, bill CreditBillRecord) error
	AdjustDebt(ctx context.Context, customerID string, delta money.Money) error
}

// Auditor records ledger mutations. Satisfied by shared.AuditLogger.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ReportCache drops cached report data after a ledger mutation.
// Satisfied by analytics.Cache.
type ReportCache interface {
	Bump(ctx context.Context) error
}

// Service finalizes sales. Every finalize runs as a single transaction:
// the counter, the sale, the stock decrements and any credit bill
// either all commit or none do.
type Service struct {
	logger       *slog.Logger
	repo         Repository
	audit        Auditor
	reports      ReportCache
	enforceLimit bool
	now          func() time.Time
}

// NewService builds Service instance. When enforceLimit is set a credit
// sale that would push the customer past their credit limit is
// rejected; otherwise the limit is advisory only.
func NewService(logger *slog.Logger, repo Repository, audit Auditor, reports ReportCache, enforceLimit bool) *Service {
	return &Service{
		logger:       logger,
		repo:         repo,
		audit:        audit,
		reports:      reports,
		enforceLimit: enforceLimit,
		now:          time.Now,
	}
}

func validateCart(cart []CartLine) error {
	if len(cart) == 0 {
		return fmt.Errorf("%w: cart is empty", httpx.ErrValidation)
	}
	for _, line := range cart {
		if line.Barcode == "" {
			return fmt.Errorf("%w: cart line missing barcode", httpx.ErrValidation)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for %s must be positive", httpx.ErrValidation, line.Barcode)
		}
	}
	return nil
}

// priceCart resolves and locks every product in the cart, checks stock
// on all lines before touching any of them, and returns the priced
// items with the subtotal.
func (s *Service) priceCart(ctx context.Context, tx TxRepository, cart []CartLine) ([]SaleItem, money.Money, error) {
	items := make([]SaleItem, 0, len(cart))
	var subtotal money.Money
	for _, line := range cart {
		product, err := tx.ProductForSale(ctx, line.Barcode)
		if err != nil {
			return nil, 0, err
		}
		if product.Quantity < line.Quantity {
			return nil, 0, fmt.Errorf("%w: %s has %d in stock, cart wants %d",
				httpx.ErrInsufficientStock, product.Title, product.Quantity, line.Quantity)
		}
		item := SaleItem{
			Barcode:  product.Barcode,
			Title:    product.Title,
			Price:    product.Price,
			Cost:     product.Cost,
			Quantity: line.Quantity,
		}
		items = append(items, item)
		subtotal += item.Total()
	}
	return items, subtotal, nil
}

func (s *Service) finalize(ctx context.Context, tx TxRepository, items []SaleItem, subtotal, received money.Money) (*Sale, error) {
	vat := money.VAT(subtotal)
	grand := subtotal + vat

	if received > 0 && received < grand {
		return nil, fmt.Errorf("%w: received %s for a total of %s",
			httpx.ErrInsufficientPayment, received, grand)
	}
	var change money.Money
	if received > 0 {
		change = received - grand
	}

	seq, err := tx.NextTransactionSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("next transaction number: %w", err)
	}
	sale := &Sale{
		TransactionID:  fmt.Sprintf("T%06d", seq),
		SoldAt:         s.now(),
		Subtotal:       subtotal,
		VAT:            vat,
		GrandTotal:     grand,
		ReceivedAmount: received,
		ChangeAmount:   change,
		Items:          items,
	}
	if err := tx.InsertSale(ctx, sale); err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}
	for _, item := range items {
		if err := tx.DecrementStock(ctx, item.Barcode, item.Quantity); err != nil {
			return nil, fmt.Errorf("decrement stock for %s: %w", item.Barcode, err)
		}
	}
	return sale, nil
}

// FinalizeCashSale checks out a cart paid in full at the counter. The
// received amount must cover the grand total; change is returned with
// the sale.
func (s *Service) FinalizeCashSale(ctx context.Context, cart []CartLine, received money.Money) (*Sale, error) {
	if err := validateCart(cart); err != nil {
		return nil, err
	}
	if received <= 0 {
		return nil, fmt.Errorf("%w: received amount must be positive", httpx.ErrValidation)
	}

	var sale *Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items, subtotal, err := s.priceCart(ctx, tx, cart)
		if err != nil {
			return err
		}
		sale, err = s.finalize(ctx, tx, items, subtotal, received)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("cash sale finalized",
		slog.String("transaction_id", sale.TransactionID),
		slog.Int64("grand_total", int64(sale.GrandTotal)))
	s.recordAudit(ctx, sale.TransactionID, map[string]any{
		"method":      "cash",
		"grand_total": int64(sale.GrandTotal),
	})
	s.bumpReports(ctx)
	return sale, nil
}

// FinalizeCreditSale checks out a cart on the customer's credit. The
// sale, the credit bill and the debt raise share one transaction;
// creditDays of zero falls back to the customer's own terms.
func (s *Service) FinalizeCreditSale(ctx context.Context, cart []CartLine, customerID string, creditDays int) (*CreditSaleResult, error) {
	if err := validateCart(cart); err != nil {
		return nil, err
	}
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", httpx.ErrValidation)
	}
	if creditDays < 0 {
		return nil, fmt.Errorf("%w: credit days must not be negative", httpx.ErrValidation)
	}

	var result CreditSaleResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		terms, err := tx.CustomerTermsForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		days := creditDays
		if days == 0 {
			days = terms.CreditDays
		}

		items, subtotal, err := s.priceCart(ctx, tx, cart)
		if err != nil {
			return err
		}
		grand := subtotal + money.VAT(subtotal)
		if s.enforceLimit && terms.TotalDebt+grand > terms.CreditLimit {
			return fmt.Errorf("%w: sale of %s would exceed credit limit %s (current debt %s)",
				httpx.ErrValidation, grand, terms.CreditLimit, terms.TotalDebt)
		}
		sale, err := s.finalize(ctx, tx, items, subtotal, 0)
		if err != nil {
			return err
		}

		bill := CreditBillRecord{
			BillID:        uuid.NewString(),
			CustomerID:    customerID,
			TransactionID: sale.TransactionID,
			BillDate:      sale.SoldAt,
			DueDate:       sale.SoldAt.AddDate(0, 0, days),
			Total:         sale.GrandTotal,
		}
		if err := tx.InsertCreditBill(ctx, bill); err != nil {
			return fmt.Errorf("open credit bill: %w", err)
		}
		if err := tx.AdjustDebt(ctx, customerID, sale.GrandTotal); err != nil {
			return fmt.Errorf("raise customer debt: %w", err)
		}

		result = CreditSaleResult{Sale: sale, BillID: bill.BillID, DueDate: bill.DueDate, Debt: bill.Total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("credit sale finalized",
		slog.String("transaction_id", result.Sale.TransactionID),
		slog.String("customer_id", customerID),
		slog.Int64("billed", int64(result.Debt)))
	s.recordAudit(ctx, result.Sale.TransactionID, map[string]any{
		"method":      "credit",
		"customer_id": customerID,
		"bill_id":     result.BillID,
		"grand_total": int64(result.Sale.GrandTotal),
	})
	s.bumpReports(ctx)
	return &result, nil
}

func (s *Service) recordAudit(ctx context.Context, transactionID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	log := shared.AuditLog{Action: "sale.finalize", Entity: "sale", EntityID: transactionID, Meta: meta}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("audit record failed", slog.String("transaction_id", transactionID), slog.Any("error", err))
	}
}

func (s *Service) bumpReports(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Bump(ctx); err != nil {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}

// Get returns one sale by its transaction id.
func (s *Service) Get(ctx context.Context, transactionID string) (*Sale, error) {
	return s.repo.Get(ctx, transactionID)
}

// List returns sales newest first with the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Sale, int, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// ListByDateRange returns sales in [from, to), oldest first.
func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error) {
	return s.repo.ListByDateRange(ctx, from, to)
}
