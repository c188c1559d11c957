package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/sabaipos/sabaipos/internal/credit"
	"github.com/sabaipos/sabaipos/internal/sales"
)

// SalesSource supplies the sale rows a report aggregates over.
// Satisfied by the sales service.
type SalesSource interface {
	ListByDateRange(ctx context.Context, from, to time.Time) ([]sales.Sale, error)
}

// CreditSource supplies the credit ledger summary. Satisfied by the
// credit service.
type CreditSource interface {
	Statistics(ctx context.Context) (*credit.Statistics, error)
}

// Service coordinates report queries with the cache layer.
type Service struct {
	sales  SalesSource
	credit CreditSource
	cache  *Cache
}

// NewService wires the report sources with a Cache helper.
func NewService(salesSource SalesSource, creditSource CreditSource, cache *Cache) *Service {
	return &Service{sales: salesSource, credit: creditSource, cache: cache}
}

// ProfitReport aggregates sales in [from, to) into a per-product profit
// table with a summary row.
func (s *Service) ProfitReport(ctx context.Context, from, to time.Time) (*ProfitReport, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "profit", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	var report ProfitReport
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		return s.buildProfitReport(ctx, from, to)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Service) buildProfitReport(ctx context.Context, from, to time.Time) (*ProfitReport, error) {
	rows, err := s.sales.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*ProductProfit)
	report := &ProfitReport{From: from, To: to}
	for _, sale := range rows {
		report.Summary.TransactionCount++
		for _, item := range sale.Items {
			p, ok := byProduct[item.Barcode]
			if !ok {
				p = &ProductProfit{Barcode: item.Barcode, Title: item.Title}
				byProduct[item.Barcode] = p
			}
			revenue := item.Total()
			cost := item.Cost.MulQty(item.Quantity)
			p.QuantitySold += item.Quantity
			p.Revenue += revenue
			p.Cost += cost
			p.Profit += revenue - cost
			report.Summary.Revenue += revenue
			report.Summary.Cost += cost
		}
	}
	report.Summary.Profit = report.Summary.Revenue - report.Summary.Cost
	if report.Summary.Revenue > 0 {
		report.Summary.MarginPercent = float64(report.Summary.Profit) / float64(report.Summary.Revenue) * 100
	}

	report.Products = make([]ProductProfit, 0, len(byProduct))
	for _, p := range byProduct {
		report.Products = append(report.Products, *p)
	}
	sort.Slice(report.Products, func(i, j int) bool {
		return report.Products[i].Profit > report.Products[j].Profit
	})
	return report, nil
}

// CreditOverview returns the credit ledger summary, cached.
func (s *Service) CreditOverview(ctx context.Context) (*credit.Statistics, error) {
	key, err := s.cache.BuildKey(ctx, "analytics", "credit_overview", time.Now().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	var stats credit.Statistics
	err = s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (any, error) {
		return s.credit.Statistics(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Invalidate bumps the cache version after ledger mutations.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
