package invoices

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Service handles invoice document business logic.
type Service struct {
	store *Store
	now   func() time.Time
}

// NewService builds Service instance.
func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create issues a new unpaid invoice. The grand total is the item
// subtotal plus VAT; the remaining balance starts at the grand total.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Invoice, error) {
	if input.TransactionID == "" {
		return nil, fmt.Errorf("%w: transaction id is required", httpx.ErrValidation)
	}
	if input.CustomerInfo.Name == "" {
		return nil, fmt.Errorf("%w: customer name is required", httpx.ErrValidation)
	}
	if len(input.CartItems) == 0 {
		return nil, fmt.Errorf("%w: invoice requires at least one item", httpx.ErrValidation)
	}
	exists, err := s.store.Exists(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: invoice %s already issued", httpx.ErrDuplicate, input.TransactionID)
	}

	var subtotal money.Money
	for _, item := range input.CartItems {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %s quantity must be positive", httpx.ErrValidation, item.Barcode)
		}
		subtotal += item.Total()
	}
	vat := money.VAT(subtotal)

	datetime := input.Datetime
	if datetime.IsZero() {
		datetime = s.now()
	}
	inv := &Invoice{
		TransactionID:   input.TransactionID,
		CustomerInfo:    input.CustomerInfo,
		Datetime:        datetime,
		DueDate:         input.DueDate,
		Subtotal:        subtotal,
		VAT:             vat,
		GrandTotal:      subtotal + vat,
		PaidAmount:      0,
		RemainingAmount: subtotal + vat,
		Status:          StatusUnpaid,
		CartItems:       input.CartItems,
		PaymentHistory:  []PaymentRecord{},
	}
	if err := s.store.Put(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Get returns one invoice document.
func (s *Service) Get(ctx context.Context, transactionID string) (*Invoice, error) {
	return s.store.Get(ctx, transactionID)
}

// ApplyPayment records a payment on an invoice. The scalar balances and
// the payment history move together in one document write; payments of
// zero or above the remaining balance are rejected and leave the
// document untouched.
func (s *Service) ApplyPayment(ctx context.Context, transactionID string, amount money.Money) (*Invoice, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", httpx.ErrValidation)
	}
	inv, err := s.store.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusPaid {
		return nil, fmt.Errorf("%w: invoice %s is already settled", httpx.ErrOverPayment, transactionID)
	}
	if amount > inv.RemainingAmount {
		return nil, fmt.Errorf("%w: payment %s exceeds remaining balance %s",
			httpx.ErrOverPayment, amount, inv.RemainingAmount)
	}

	inv.PaidAmount += amount
	inv.RemainingAmount -= amount
	if inv.RemainingAmount == 0 {
		inv.Status = StatusPaid
	} else {
		inv.Status = StatusPartial
	}
	inv.PaymentHistory = append(inv.PaymentHistory, PaymentRecord{
		Date:      s.now(),
		Amount:    amount,
		Remaining: inv.RemainingAmount,
	})

	if err := s.store.Put(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListAll returns every invoice, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Invoice, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Datetime.After(all[j].Datetime) })
	return all, nil
}

// ListUnpaid returns invoices that still carry a balance.
func (s *Service) ListUnpaid(ctx context.Context) ([]Invoice, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	unpaid := all[:0]
	for _, inv := range all {
		if inv.Status != StatusPaid {
			unpaid = append(unpaid, inv)
		}
	}
	return unpaid, nil
}
