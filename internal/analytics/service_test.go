package analytics

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sabaipos/sabaipos/internal/credit"
	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/sales"
)

type mockSales struct {
	rows  []sales.Sale
	calls int
}

func (m *mockSales) ListByDateRange(ctx context.Context, from, to time.Time) ([]sales.Sale, error) {
	m.calls++
	return m.rows, nil
}

type mockCredit struct {
	stats credit.Statistics
	calls int
}

func (m *mockCredit) Statistics(ctx context.Context) (*credit.Statistics, error) {
	m.calls++
	copied := m.stats
	return &copied, nil
}

func newAnalyticsService(t *testing.T, salesSource *mockSales, creditSource *mockCredit) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(salesSource, creditSource, NewCache(client, time.Minute))
}

func sampleSales() []sales.Sale {
	items := []sales.SaleItem{
		{Barcode: "885001", Title: "Rice 5kg", Price: money.FromBaht(250), Cost: money.FromBaht(200), Quantity: 2},
		{Barcode: "885002", Title: "Fish Sauce", Price: money.FromBaht(50), Cost: money.FromBaht(30), Quantity: 1},
	}
	second := []sales.SaleItem{
		{Barcode: "885001", Title: "Rice 5kg", Price: money.FromBaht(250), Cost: money.FromBaht(200), Quantity: 1},
	}
	return []sales.Sale{
		{TransactionID: "T000001", Items: items},
		{TransactionID: "T000002", Items: second},
	}
}

func TestProfitReport(t *testing.T) {
	ctx := context.Background()
	src := &mockSales{rows: sampleSales()}
	svc := newAnalyticsService(t, src, &mockCredit{})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	report, err := svc.ProfitReport(ctx, from, to)
	require.NoError(t, err)

	require.Equal(t, 2, report.Summary.TransactionCount)
	require.Equal(t, money.FromBaht(800), report.Summary.Revenue)
	require.Equal(t, money.FromBaht(630), report.Summary.Cost)
	require.Equal(t, money.FromBaht(170), report.Summary.Profit)
	require.InDelta(t, 21.25, report.Summary.MarginPercent, 0.01)

	require.Len(t, report.Products, 2)
	// Sorted by profit, rice first.
	rice := report.Products[0]
	require.Equal(t, "885001", rice.Barcode)
	require.Equal(t, 3, rice.QuantitySold)
	require.Equal(t, money.FromBaht(750), rice.Revenue)
	require.Equal(t, money.FromBaht(150), rice.Profit)
}

func TestProfitReportCached(t *testing.T) {
	ctx := context.Background()
	src := &mockSales{rows: sampleSales()}
	svc := newAnalyticsService(t, src, &mockCredit{})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	_, err := svc.ProfitReport(ctx, from, to)
	require.NoError(t, err)
	_, err = svc.ProfitReport(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.ProfitReport(ctx, from, to)
	require.NoError(t, err)
	require.Equal(t, 2, src.calls)
}

func TestCreditOverview(t *testing.T) {
	ctx := context.Background()
	creditSource := &mockCredit{stats: credit.Statistics{
		PendingCount: 3,
		OverdueCount: 1,
		TotalDebt:    money.FromBaht(4500),
		DueThisMonth: money.FromBaht(1200),
	}}
	svc := newAnalyticsService(t, &mockSales{}, creditSource)

	stats, err := svc.CreditOverview(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.PendingCount)
	require.Equal(t, money.FromBaht(4500), stats.TotalDebt)

	_, err = svc.CreditOverview(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, creditSource.calls)
}
