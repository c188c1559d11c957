package analytics

import (
	"time"

	"github.com/sabaipos/sabaipos/internal/money"
)

// ProductProfit aggregates one product's movement over a report range.
// Figures come from the price and cost snapshots stored with each sale,
// so later catalog edits do not rewrite history.
type ProductProfit struct {
	Barcode      string      `json:"barcode"`
	Title        string      `json:"title"`
	QuantitySold int         `json:"quantity_sold"`
	Revenue      money.Money `json:"revenue"`
	Cost         money.Money `json:"cost"`
	Profit       money.Money `json:"profit"`
}

// ProfitSummary totals the report range.
type ProfitSummary struct {
	TransactionCount int         `json:"transaction_count"`
	Revenue          money.Money `json:"revenue"`
	Cost             money.Money `json:"cost"`
	Profit           money.Money `json:"profit"`
	MarginPercent    float64     `json:"margin_percent"`
}

// ProfitReport is the per-product profit table plus its summary.
type ProfitReport struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Products []ProductProfit `json:"products"`
	Summary  ProfitSummary   `json:"summary"`
}
