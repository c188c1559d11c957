package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sabaipos/sabaipos/internal/invoices"
	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/sales"
)

var testShop = ShopProfile{
	Name:    "Sabai Minimart",
	Address: "99 Sukhumvit Rd, Bangkok",
	Phone:   "02-000-0000",
	TaxID:   "0105500000000",
}

func TestBuildReceiptHTML(t *testing.T) {
	sale := &sales.Sale{
		TransactionID:  "T000042",
		SoldAt:         time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC),
		Subtotal:       money.FromBaht(550),
		VAT:            money.VAT(money.FromBaht(550)),
		GrandTotal:     money.FromBaht(550) + money.VAT(money.FromBaht(550)),
		ReceivedAmount: money.FromBaht(600),
		ChangeAmount:   money.FromBaht(600) - money.FromBaht(550) - money.VAT(money.FromBaht(550)),
		Items: []sales.SaleItem{
			{Barcode: "885001", Title: "Rice 5kg", Price: money.FromBaht(250), Quantity: 2},
			{Barcode: "885002", Title: "Fish Sauce", Price: money.FromBaht(50), Quantity: 1},
		},
	}

	html, err := BuildReceiptHTML(testShop, sale)
	require.NoError(t, err)
	require.Contains(t, html, "Sabai Minimart")
	require.Contains(t, html, "T000042")
	require.Contains(t, html, "Rice 5kg x2")
	require.Contains(t, html, "VAT 7%")
	require.Contains(t, html, sale.GrandTotal.String())
	require.Contains(t, html, "Change")
}

func TestBuildReceiptHTMLCreditSaleHidesChange(t *testing.T) {
	sale := &sales.Sale{
		TransactionID: "T000043",
		SoldAt:        time.Now(),
		Subtotal:      money.FromBaht(100),
		VAT:           money.VAT(money.FromBaht(100)),
		GrandTotal:    money.FromBaht(100) + money.VAT(money.FromBaht(100)),
		Items:         []sales.SaleItem{{Barcode: "x", Title: "Eggs", Price: money.FromBaht(100), Quantity: 1}},
	}

	html, err := BuildReceiptHTML(testShop, sale)
	require.NoError(t, err)
	require.NotContains(t, html, "Change")
}

func TestBuildInvoiceHTML(t *testing.T) {
	inv := &invoices.Invoice{
		TransactionID: "T000050",
		CustomerInfo:  invoices.CustomerInfo{Name: "Somchai", Phone: "081-000-0000"},
		DueDate:       time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		Subtotal:      money.FromBaht(1000),
		VAT:           money.VAT(money.FromBaht(1000)),
		GrandTotal:    money.FromBaht(1070),
		PaidAmount:    money.FromBaht(200),
		RemainingAmount: money.FromBaht(870),
		Status:        invoices.StatusPartial,
		CartItems: []invoices.CartItem{
			{Barcode: "885001", Title: "Rice 5kg", Price: money.FromBaht(250), Quantity: 4},
		},
	}

	html, err := BuildInvoiceHTML(testShop, inv)
	require.NoError(t, err)
	require.Contains(t, html, "Somchai")
	require.Contains(t, html, "Balance Due")
	require.Contains(t, html, "870.00")
	require.Contains(t, html, "30/09/2026")
}
