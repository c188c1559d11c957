package credit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
	"github.com/sabaipos/sabaipos/internal/shared"
)

// Repository defines data access for the credit bill ledger.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, billID string) (*Bill, error)
	ListAll(ctx context.Context) ([]Bill, error)
	ListOpen(ctx context.Context) ([]Bill, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]Bill, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Bill, error)
	Statistics(ctx context.Context, asOf time.Time) (*Statistics, error)
}

// TxRepository exposes the operations that must share one transaction.
// A bill never changes without the owning customer's total_debt moving
// by the same amount inside the same commit.
type TxRepository interface {
	CustomerTermsForUpdate(ctx context.Context, customerID string) (*CustomerTerms, error)
	InsertBill(ctx context.Context, bill Bill) error
	BillForUpdate(ctx context.Context, billID string) (*Bill, error)
	UpdatePayment(ctx context.Context, billID string, paid, remaining money.Money, status BillStatus, paymentDate *time.Time) error
	DeleteBill(ctx context.Context, billID string) error
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

// Service handles credit bill ledger business logic.
type Service struct {
	logger       *slog.Logger
	repo         Repository
	audit        Auditor
	reports      ReportCache
	enforceLimit bool
	now          func() time.Time
}

// NewService builds Service instance. When enforceLimit is set OpenBill
// rejects bills that would push the customer past their credit limit;
// otherwise the limit is advisory only.
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

// OpenBill opens a new credit bill and raises the customer's debt by
// its total in the same transaction.
func (s *Service) OpenBill(ctx context.Context, input OpenBillInput) (*Bill, error) {
	if input.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", httpx.ErrValidation)
	}
	if input.Total <= 0 {
		return nil, fmt.Errorf("%w: bill total must be positive", httpx.ErrValidation)
	}
	billDate := input.BillDate
	if billDate.IsZero() {
		billDate = s.now()
	}

	bill := Bill{
		BillID:          uuid.NewString(),
		CustomerID:      input.CustomerID,
		TransactionID:   input.TransactionID,
		BillDate:        billDate,
		TotalAmount:     input.Total,
		PaidAmount:      0,
		RemainingAmount: input.Total,
		Status:          StatusPending,
		Notes:           input.Notes,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		terms, err := tx.CustomerTermsForUpdate(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		if s.enforceLimit && terms.TotalDebt+input.Total > terms.CreditLimit {
			return fmt.Errorf("%w: bill of %s would exceed credit limit %s (current debt %s)",
				httpx.ErrValidation, input.Total, terms.CreditLimit, terms.TotalDebt)
		}
		bill.DueDate = billDate.AddDate(0, 0, terms.CreditDays)
		if err := tx.InsertBill(ctx, bill); err != nil {
			return fmt.Errorf("insert bill: %w", err)
		}
		if err := tx.AdjustDebt(ctx, input.CustomerID, input.Total); err != nil {
			return fmt.Errorf("raise customer debt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "bill.open", bill.BillID, map[string]any{
		"customer_id": bill.CustomerID,
		"total":       int64(bill.TotalAmount),
	})
	s.bumpReports(ctx)
	return &bill, nil
}

// ApplyPayment registers a payment against a bill. The bill's paid and
// remaining amounts, its status and the customer's total_debt all move
// in one transaction. Payments above the remaining balance are
// rejected, never clamped.
func (s *Service) ApplyPayment(ctx context.Context, billID string, amount money.Money) (*Bill, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}

	var updated Bill
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		bill, err := tx.BillForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status == StatusPaid {
			return fmt.Errorf("%w: bill %s is already settled", httpx.ErrOverPayment, billID)
		}
		if amount > bill.RemainingAmount {
			return fmt.Errorf("%w: payment %s exceeds remaining balance %s",
				httpx.ErrOverPayment, amount, bill.RemainingAmount)
		}

		bill.PaidAmount += amount
		bill.RemainingAmount -= amount
		if bill.RemainingAmount == 0 {
			bill.Status = StatusPaid
			paidAt := s.now()
			bill.PaymentDate = &paidAt
		} else {
			bill.Status = StatusPartial
		}

		if err := tx.UpdatePayment(ctx, billID, bill.PaidAmount, bill.RemainingAmount, bill.Status, bill.PaymentDate); err != nil {
			return fmt.Errorf("update bill payment: %w", err)
		}
		if err := tx.AdjustDebt(ctx, bill.CustomerID, -amount); err != nil {
			return fmt.Errorf("lower customer debt: %w", err)
		}
		updated = *bill
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "bill.payment", billID, map[string]any{
		"amount": int64(amount),
		"status": string(updated.Status),
	})
	s.bumpReports(ctx)
	return &updated, nil
}

// DeleteBill removes a bill and reverses its remaining balance from the
// customer's debt. The returned flag warns the caller that payment
// history went with it when the bill had any payments recorded.
func (s *Service) DeleteBill(ctx context.Context, billID string) (bool, error) {
	var warned bool
	var deleted Bill
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		bill, err := tx.BillForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		warned = bill.PaidAmount > 0 || bill.Status == StatusPaid
		if bill.RemainingAmount > 0 {
			if err := tx.AdjustDebt(ctx, bill.CustomerID, -bill.RemainingAmount); err != nil {
				return fmt.Errorf("reverse customer debt: %w", err)
			}
		}
		if err := tx.DeleteBill(ctx, billID); err != nil {
			return fmt.Errorf("delete bill: %w", err)
		}
		deleted = *bill
		return nil
	})
	if err != nil {
		return false, err
	}

	s.recordAudit(ctx, "bill.delete", billID, map[string]any{
		"customer_id": deleted.CustomerID,
		"paid":        int64(deleted.PaidAmount),
		"remaining":   int64(deleted.RemainingAmount),
		"status":      string(deleted.Status),
	})
	s.bumpReports(ctx)
	return warned, nil
}

// Get returns one bill with the owning customer's name and phone.
func (s *Service) Get(ctx context.Context, billID string) (*Bill, error) {
	return s.repo.Get(ctx, billID)
}

// ListAll returns every bill, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Bill, error) {
	return s.repo.ListAll(ctx)
}

// ListPending returns bills that still carry a balance.
func (s *Service) ListPending(ctx context.Context) ([]Bill, error) {
	return s.repo.ListOpen(ctx)
}

// ListOverdue returns unpaid bills past their due date.
func (s *Service) ListOverdue(ctx context.Context) ([]Bill, error) {
	return s.repo.ListOverdue(ctx, s.now())
}

// ListByCustomer returns all bills for one customer.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]Bill, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Statistics summarises the ledger as of now.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx, s.now())
}

func (s *Service) recordAudit(ctx context.Context, action, billID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "credit_bill", EntityID: billID, Meta: meta}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
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
