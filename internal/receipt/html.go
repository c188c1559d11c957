package receipt

import (
	"bytes"
	"html/template"
	"time"

	"github.com/sabaipos/sabaipos/internal/invoices"
	"github.com/sabaipos/sabaipos/internal/sales"
)

// ShopProfile is the letterhead printed on every document.
type ShopProfile struct {
	Name    string
	Address string
	Phone   string
	TaxID   string
}

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body { font-family: sans-serif; font-size: 12px; width: 320px; margin: 0 auto; }
h1 { font-size: 16px; text-align: center; margin-bottom: 2px; }
.head { text-align: center; margin-bottom: 12px; }
table { width: 100%; border-collapse: collapse; }
td.num { text-align: right; }
.totals td { border-top: 1px dashed #000; padding-top: 4px; }
.footer { text-align: center; margin-top: 16px; }
</style></head><body>
<h1>{{.Shop.Name}}</h1>
<div class="head">{{.Shop.Address}}<br>Tel: {{.Shop.Phone}}{{if .Shop.TaxID}}<br>Tax ID: {{.Shop.TaxID}}{{end}}</div>
<div>Receipt {{.Sale.TransactionID}}<br>{{.Date}}</div>
<table>
{{range .Sale.Items}}<tr><td>{{.Title}} x{{.Quantity}}</td><td class="num">{{.Total}}</td></tr>
{{end}}
<tr class="totals"><td>Subtotal</td><td class="num">{{.Sale.Subtotal}}</td></tr>
<tr><td>VAT 7%</td><td class="num">{{.Sale.VAT}}</td></tr>
<tr><td><b>Total</b></td><td class="num"><b>{{.Sale.GrandTotal}}</b></td></tr>
{{if gt .Sale.ReceivedAmount 0}}<tr><td>Received</td><td class="num">{{.Sale.ReceivedAmount}}</td></tr>
<tr><td>Change</td><td class="num">{{.Sale.ChangeAmount}}</td></tr>{{end}}
</table>
<div class="footer">Thank you!</div>
</body></html>`))

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
body { font-family: sans-serif; font-size: 13px; margin: 40px; }
h1 { font-size: 20px; margin-bottom: 2px; }
.head { margin-bottom: 20px; }
.bill-to { margin-bottom: 16px; }
table { width: 100%; border-collapse: collapse; margin-bottom: 16px; }
th, td { border: 1px solid #444; padding: 6px; }
td.num, th.num { text-align: right; }
.due { border: 2px solid #000; padding: 8px; display: inline-block; }
</style></head><body>
<h1>{{.Shop.Name}}</h1>
<div class="head">{{.Shop.Address}} &middot; Tel: {{.Shop.Phone}}{{if .Shop.TaxID}} &middot; Tax ID: {{.Shop.TaxID}}{{end}}</div>
<h2>Invoice {{.Invoice.TransactionID}}</h2>
<div class="bill-to">
Billed to: {{.Invoice.CustomerInfo.Name}}{{if .Invoice.CustomerInfo.Phone}}<br>{{.Invoice.CustomerInfo.Phone}}{{end}}{{if .Invoice.CustomerInfo.Address}}<br>{{.Invoice.CustomerInfo.Address}}{{end}}
</div>
<table>
<tr><th>Item</th><th class="num">Price</th><th class="num">Qty</th><th class="num">Total</th></tr>
{{range .Invoice.CartItems}}<tr><td>{{.Title}}</td><td class="num">{{.Price}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.Total}}</td></tr>
{{end}}
<tr><td colspan="3" class="num">Subtotal</td><td class="num">{{.Invoice.Subtotal}}</td></tr>
<tr><td colspan="3" class="num">VAT 7%</td><td class="num">{{.Invoice.VAT}}</td></tr>
<tr><td colspan="3" class="num"><b>Grand Total</b></td><td class="num"><b>{{.Invoice.GrandTotal}}</b></td></tr>
<tr><td colspan="3" class="num">Paid</td><td class="num">{{.Invoice.PaidAmount}}</td></tr>
<tr><td colspan="3" class="num"><b>Balance Due</b></td><td class="num"><b>{{.Invoice.RemainingAmount}}</b></td></tr>
</table>
<div class="due">Payment due by <b>{{.DueDate}}</b></div>
</body></html>`))

// BuildReceiptHTML renders a cash receipt for a finalized sale.
func BuildReceiptHTML(shop ShopProfile, sale *sales.Sale) (string, error) {
	var buf bytes.Buffer
	err := receiptTmpl.Execute(&buf, map[string]any{
		"Shop": shop,
		"Sale": sale,
		"Date": sale.SoldAt.Format("02/01/2006 15:04"),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildInvoiceHTML renders a credit invoice document with its balance
// and due date.
func BuildInvoiceHTML(shop ShopProfile, inv *invoices.Invoice) (string, error) {
	due := ""
	if !inv.DueDate.IsZero() {
		due = inv.DueDate.Format("02/01/2006")
	} else {
		due = time.Now().Format("02/01/2006")
	}
	var buf bytes.Buffer
	err := invoiceTmpl.Execute(&buf, map[string]any{
		"Shop":    shop,
		"Invoice": inv,
		"DueDate": due,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
