package invoices

import (
	"time"

	"github.com/sabaipos/sabaipos/internal/money"
)

// Status values for an invoice document. Lowercase on the wire, matching
// the stored document format.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// CustomerInfo is the customer snapshot embedded in each invoice. The
// document keeps its own copy so the invoice stays readable after the
// customer record changes or disappears.
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// CartItem is one invoice line.
type CartItem struct {
	Barcode  string      `json:"barcode"`
	Title    string      `json:"title"`
	Price    money.Money `json:"price"`
	Quantity int         `json:"quantity"`
}

// Total returns the line total.
func (i CartItem) Total() money.Money {
	return i.Price.MulQty(i.Quantity)
}

// PaymentRecord is one entry in an invoice's payment history. History is
// append-only; entries are never edited or removed.
type PaymentRecord struct {
	Date      time.Time   `json:"date"`
	Amount    money.Money `json:"amount"`
	Remaining money.Money `json:"remaining"`
}

// Invoice is a self-contained billing document. Each invoice is stored
// as one JSON value and always written back whole; PaidAmount,
// RemainingAmount, Status and PaymentHistory advance together in a
// single document write.
type Invoice struct {
	TransactionID   string          `json:"transaction_id"`
	CustomerInfo    CustomerInfo    `json:"customer_info"`
	Datetime        time.Time       `json:"datetime"`
	DueDate         time.Time       `json:"due_date"`
	Subtotal        money.Money     `json:"subtotal"`
	VAT             money.Money     `json:"vat"`
	GrandTotal      money.Money     `json:"grand_total"`
	PaidAmount      money.Money     `json:"paid_amount"`
	RemainingAmount money.Money     `json:"remaining_amount"`
	Status          Status          `json:"status"`
	CartItems       []CartItem      `json:"cart_items"`
	PaymentHistory  []PaymentRecord `json:"payment_history"`
}

// CreateInput carries the fields needed to issue a new invoice.
type CreateInput struct {
	TransactionID string
	CustomerInfo  CustomerInfo
	Datetime      time.Time
	DueDate       time.Time
	CartItems     []CartItem
}
