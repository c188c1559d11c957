package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sabaipos/sabaipos/internal/analytics"
	"github.com/sabaipos/sabaipos/internal/credit"
)

// WriteProfitCSV serialises the profit table with its summary to CSV.
func WriteProfitCSV(w io.Writer, report *analytics.ProfitReport) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Barcode", "Title", "Quantity Sold", "Revenue", "Cost", "Profit"}); err != nil {
		return err
	}
	for _, p := range report.Products {
		if err := writer.Write([]string{
			p.Barcode,
			p.Title,
			strconv.Itoa(p.QuantitySold),
			p.Revenue.String(),
			p.Cost.String(),
			p.Profit.String(),
		}); err != nil {
			return err
		}
	}
	records := [][]string{
		{""},
		{"Transactions", strconv.Itoa(report.Summary.TransactionCount)},
		{"Total Revenue", report.Summary.Revenue.String()},
		{"Total Cost", report.Summary.Cost.String()},
		{"Total Profit", report.Summary.Profit.String()},
		{"Margin %", fmt.Sprintf("%.2f", report.Summary.MarginPercent)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCreditOverviewCSV serialises the credit ledger summary to CSV.
func WriteCreditOverviewCSV(w io.Writer, stats *credit.Statistics) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Pending Bills", strconv.Itoa(stats.PendingCount)},
		{"Overdue Bills", strconv.Itoa(stats.OverdueCount)},
		{"Total Debt", stats.TotalDebt.String()},
		{"Due This Month", stats.DueThisMonth.String()},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
