package credit

import (
	"time"

	"github.com/sabaipos/sabaipos/internal/money"
)

// BillStatus tracks where a bill sits in its payment lifecycle.
type BillStatus string

const (
	StatusPending BillStatus = "PENDING"
	StatusPartial BillStatus = "PARTIAL"
	StatusPaid    BillStatus = "PAID"
)

// Bill is a single credit bill in the ledger. PaidAmount and
// RemainingAmount always sum to TotalAmount; status follows from
// PaidAmount alone. CustomerName and CustomerPhone are joined from the
// customer registry on reads and are never written through this type.
type Bill struct {
	BillID          string      `json:"bill_id"`
	CustomerID      string      `json:"customer_id"`
	CustomerName    string      `json:"customer_name,omitempty"`
	CustomerPhone   string      `json:"customer_phone,omitempty"`
	TransactionID   string      `json:"transaction_id,omitempty"`
	BillDate        time.Time   `json:"bill_date"`
	DueDate         time.Time   `json:"due_date"`
	TotalAmount     money.Money `json:"total_amount"`
	PaidAmount      money.Money `json:"paid_amount"`
	RemainingAmount money.Money `json:"remaining_amount"`
	Status          BillStatus  `json:"status"`
	PaymentDate     *time.Time  `json:"payment_date,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

// Overdue reports whether the bill is unpaid past its due date.
func (b *Bill) Overdue(asOf time.Time) bool {
	return b.Status != StatusPaid && b.DueDate.Before(asOf.Truncate(24*time.Hour))
}

// OpenBillInput carries the fields needed to open a new bill. BillDate
// defaults to now; the due date is derived from the customer's credit
// terms, never supplied by the caller.
type OpenBillInput struct {
	CustomerID    string
	TransactionID string
	Total         money.Money
	BillDate      time.Time
	Notes         string
}

// CustomerTerms is the slice of the customer row the ledger needs when
// opening a bill.
type CustomerTerms struct {
	CreditLimit money.Money
	CreditDays  int
	TotalDebt   money.Money
}

// Statistics summarises the open side of the ledger.
type Statistics struct {
	PendingCount int         `json:"pending_count"`
	OverdueCount int         `json:"overdue_count"`
	TotalDebt    money.Money `json:"total_debt"`
	DueThisMonth money.Money `json:"due_this_month"`
}
