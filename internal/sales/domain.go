package sales

import (
	"time"

	"github.com/sabaipos/sabaipos/internal/money"
)

// CartLine is one line of a checkout cart, by product barcode. Pricing
// comes from the catalog row at finalize time, not from the caller.
type CartLine struct {
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

// SaleItem is a priced line snapshot stored with the sale. Cost is kept
// alongside price so profit can be computed after catalog prices move.
type SaleItem struct {
	Barcode  string      `json:"barcode"`
	Title    string      `json:"title"`
	Price    money.Money `json:"price"`
	Cost     money.Money `json:"cost"`
	Quantity int         `json:"quantity"`
}

// Total returns the line total.
func (i SaleItem) Total() money.Money {
	return i.Price.MulQty(i.Quantity)
}

// Sale is a finalized transaction. ReceivedAmount and ChangeAmount are
// zero on credit sales.
type Sale struct {
	ID             int64       `json:"id"`
	TransactionID  string      `json:"transaction_id"`
	SoldAt         time.Time   `json:"sold_at"`
	Subtotal       money.Money `json:"subtotal"`
	VAT            money.Money `json:"vat"`
	GrandTotal     money.Money `json:"grand_total"`
	ReceivedAmount money.Money `json:"received_amount"`
	ChangeAmount   money.Money `json:"change_amount"`
	Items          []SaleItem  `json:"items"`
}

// ProductSnapshot is the slice of a catalog row a sale needs: pricing
// plus the stock level the line is validated against.
type ProductSnapshot struct {
	Barcode  string
	Title    string
	Price    money.Money
	Cost     money.Money
	Quantity int
}

// CreditBillRecord is the bill row a credit sale opens in the same
// transaction as the sale itself.
type CreditBillRecord struct {
	BillID        string
	CustomerID    string
	TransactionID string
	BillDate      time.Time
	DueDate       time.Time
	Total         money.Money
}

// CreditSaleResult pairs the finalized sale with the bill it opened.
type CreditSaleResult struct {
	Sale    *Sale       `json:"sale"`
	BillID  string      `json:"bill_id"`
	DueDate time.Time   `json:"due_date"`
	Debt    money.Money `json:"billed_amount"`
}
