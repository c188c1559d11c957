package credit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
	"github.com/sabaipos/sabaipos/internal/shared"
)

type memoryCreditRepo struct {
	customers map[string]*CustomerTerms
	names     map[string]string
	bills     map[string]*Bill
}

func newMemoryCreditRepo() *memoryCreditRepo {
	return &memoryCreditRepo{
		customers: make(map[string]*CustomerTerms),
		names:     make(map[string]string),
		bills:     make(map[string]*Bill),
	}
}

func (r *memoryCreditRepo) addCustomer(id, name string, limit money.Money, days int) {
	r.customers[id] = &CustomerTerms{CreditLimit: limit, CreditDays: days}
	r.names[id] = name
}

func (r *memoryCreditRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryCreditRepo) CustomerTermsForUpdate(ctx context.Context, customerID string) (*CustomerTerms, error) {
	terms, ok := r.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("credit: customer %s %w", customerID, httpx.ErrNotFound)
	}
	copied := *terms
	return &copied, nil
}

func (r *memoryCreditRepo) InsertBill(ctx context.Context, bill Bill) error {
	r.bills[bill.BillID] = &bill
	return nil
}

func (r *memoryCreditRepo) BillForUpdate(ctx context.Context, billID string) (*Bill, error) {
	b, ok := r.bills[billID]
	if !ok {
		return nil, fmt.Errorf("credit: bill %w", httpx.ErrNotFound)
	}
	copied := *b
	return &copied, nil
}

func (r *memoryCreditRepo) UpdatePayment(ctx context.Context, billID string, paid, remaining money.Money, status BillStatus, paymentDate *time.Time) error {
	b, ok := r.bills[billID]
	if !ok {
		return fmt.Errorf("credit: bill %w", httpx.ErrNotFound)
	}
	b.PaidAmount = paid
	b.RemainingAmount = remaining
	b.Status = status
	b.PaymentDate = paymentDate
	return nil
}

func (r *memoryCreditRepo) DeleteBill(ctx context.Context, billID string) error {
	if _, ok := r.bills[billID]; !ok {
		return fmt.Errorf("credit: bill %w", httpx.ErrNotFound)
	}
	delete(r.bills, billID)
	return nil
}

func (r *memoryCreditRepo) AdjustDebt(ctx context.Context, customerID string, delta money.Money) error {
	terms, ok := r.customers[customerID]
	if !ok {
		return fmt.Errorf("credit: customer %s %w", customerID, httpx.ErrNotFound)
	}
	terms.TotalDebt += delta
	return nil
}

func (r *memoryCreditRepo) Get(ctx context.Context, billID string) (*Bill, error) {
	b, err := r.BillForUpdate(ctx, billID)
	if err != nil {
		return nil, err
	}
	b.CustomerName = r.names[b.CustomerID]
	return b, nil
}

func (r *memoryCreditRepo) ListAll(ctx context.Context) ([]Bill, error) {
	var out []Bill
	for _, b := range r.bills {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BillDate.After(out[j].BillDate) })
	return out, nil
}

func (r *memoryCreditRepo) ListOpen(ctx context.Context) ([]Bill, error) {
	var out []Bill
	for _, b := range r.bills {
		if b.Status != StatusPaid {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memoryCreditRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]Bill, error) {
	var out []Bill
	for _, b := range r.bills {
		if b.Overdue(asOf) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memoryCreditRepo) ListByCustomer(ctx context.Context, customerID string) ([]Bill, error) {
	var out []Bill
	for _, b := range r.bills {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memoryCreditRepo) Statistics(ctx context.Context, asOf time.Time) (*Statistics, error) {
	var stats Statistics
	for _, b := range r.bills {
		if b.Status == StatusPaid {
			continue
		}
		stats.PendingCount++
		stats.TotalDebt += b.RemainingAmount
		if b.Overdue(asOf) {
			stats.OverdueCount++
		}
		if b.DueDate.Year() == asOf.Year() && b.DueDate.Month() == asOf.Month() {
			stats.DueThisMonth += b.RemainingAmount
		}
	}
	return &stats, nil
}

type recordingAuditor struct {
	logs []shared.AuditLog
}

func (a *recordingAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type recordingReportCache struct {
	bumps int
}

func (c *recordingReportCache) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

func newTestService(repo *memoryCreditRepo, enforceLimit bool) (*Service, *recordingAuditor) {
	audit := &recordingAuditor{}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, audit, &recordingReportCache{}, enforceLimit)
	return svc, audit
}

func TestOpenBillRaisesDebt(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(10000), 30)
	svc, audit := newTestService(repo, false)

	billDate := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	bill, err := svc.OpenBill(ctx, OpenBillInput{
		CustomerID: "C001",
		Total:      money.FromBaht(1500),
		BillDate:   billDate,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, bill.Status)
	require.Equal(t, money.Money(0), bill.PaidAmount)
	require.Equal(t, bill.TotalAmount, bill.RemainingAmount)
	require.Equal(t, billDate.AddDate(0, 0, 30), bill.DueDate)
	require.Equal(t, money.FromBaht(1500), repo.customers["C001"].TotalDebt)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "bill.open", audit.logs[0].Action)
}

func TestOpenBillUnknownCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newMemoryCreditRepo(), false)

	_, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "nobody", Total: money.FromBaht(100)})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestOpenBillCreditLimit(t *testing.T) {
	ctx := context.Background()

	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(1000), 30)
	strict, _ := newTestService(repo, true)

	_, err := strict.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(1200)})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Equal(t, money.Money(0), repo.customers["C001"].TotalDebt)

	advisory, _ := newTestService(repo, false)
	_, err = advisory.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(1200)})
	require.NoError(t, err)
	require.Equal(t, money.FromBaht(1200), repo.customers["C001"].TotalDebt)
}

func TestPartialThenFullPayment(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(10000), 30)
	svc, _ := newTestService(repo, false)

	bill, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(1000)})
	require.NoError(t, err)

	partial, err := svc.ApplyPayment(ctx, bill.BillID, money.FromBaht(400))
	require.NoError(t, err)
	require.Equal(t, StatusPartial, partial.Status)
	require.Equal(t, money.FromBaht(400), partial.PaidAmount)
	require.Equal(t, money.FromBaht(600), partial.RemainingAmount)
	require.Equal(t, partial.TotalAmount, partial.PaidAmount+partial.RemainingAmount)
	require.Nil(t, partial.PaymentDate)
	require.Equal(t, money.FromBaht(600), repo.customers["C001"].TotalDebt)

	paid, err := svc.ApplyPayment(ctx, bill.BillID, money.FromBaht(600))
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.Equal(t, money.Money(0), paid.RemainingAmount)
	require.NotNil(t, paid.PaymentDate)
	require.Equal(t, money.Money(0), repo.customers["C001"].TotalDebt)
}

func TestOverpaymentRejected(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(10000), 30)
	svc, _ := newTestService(repo, false)

	bill, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(500)})
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, bill.BillID, money.FromBaht(600))
	require.ErrorIs(t, err, httpx.ErrOverPayment)

	got, err := svc.Get(ctx, bill.BillID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
	require.Equal(t, money.Money(0), got.PaidAmount)
	require.Equal(t, money.FromBaht(500), repo.customers["C001"].TotalDebt)
}

func TestZeroPaymentRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newMemoryCreditRepo(), false)

	_, err := svc.ApplyPayment(ctx, "any", 0)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPaymentOnSettledBill(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(10000), 30)
	svc, _ := newTestService(repo, false)

	bill, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(300)})
	require.NoError(t, err)
	_, err = svc.ApplyPayment(ctx, bill.BillID, money.FromBaht(300))
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, bill.BillID, money.FromBaht(1))
	require.ErrorIs(t, err, httpx.ErrOverPayment)
}

func TestDeleteBillReversesDebt(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(10000), 30)
	svc, audit := newTestService(repo, false)

	untouched, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(700)})
	require.NoError(t, err)

	warned, err := svc.DeleteBill(ctx, untouched.BillID)
	require.NoError(t, err)
	require.False(t, warned)
	require.Equal(t, money.Money(0), repo.customers["C001"].TotalDebt)

	partial, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(900)})
	require.NoError(t, err)
	_, err = svc.ApplyPayment(ctx, partial.BillID, money.FromBaht(200))
	require.NoError(t, err)

	warned, err = svc.DeleteBill(ctx, partial.BillID)
	require.NoError(t, err)
	require.True(t, warned)
	require.Equal(t, money.Money(0), repo.customers["C001"].TotalDebt)

	var deletions int
	for _, log := range audit.logs {
		if log.Action == "bill.delete" {
			deletions++
			require.Equal(t, "credit_bill", log.Entity)
		}
	}
	require.Equal(t, 2, deletions)
}

func TestDeleteBillNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(newMemoryCreditRepo(), false)

	_, err := svc.DeleteBill(ctx, "missing")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDebtMatchesOpenBills(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(100000), 15)
	svc, _ := newTestService(repo, false)

	first, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(1000)})
	require.NoError(t, err)
	second, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(2500)})
	require.NoError(t, err)
	third, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(400)})
	require.NoError(t, err)

	_, err = svc.ApplyPayment(ctx, first.BillID, money.FromBaht(1000))
	require.NoError(t, err)
	_, err = svc.ApplyPayment(ctx, second.BillID, money.FromBaht(500))
	require.NoError(t, err)
	_, err = svc.DeleteBill(ctx, third.BillID)
	require.NoError(t, err)

	var open money.Money
	bills, err := svc.ListByCustomer(ctx, "C001")
	require.NoError(t, err)
	for _, b := range bills {
		require.Equal(t, b.TotalAmount, b.PaidAmount+b.RemainingAmount)
		if b.Status != StatusPaid {
			open += b.RemainingAmount
		}
	}
	require.Equal(t, open, repo.customers["C001"].TotalDebt)
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(100000), 10)
	svc, _ := newTestService(repo, false)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// Due 2026-07-11, overdue by now.
	_, err := svc.OpenBill(ctx, OpenBillInput{
		CustomerID: "C001",
		Total:      money.FromBaht(1000),
		BillDate:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	// Due 2026-08-25, inside the current month.
	_, err = svc.OpenBill(ctx, OpenBillInput{
		CustomerID: "C001",
		Total:      money.FromBaht(2000),
		BillDate:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	// Settled, must not count anywhere.
	settled, err := svc.OpenBill(ctx, OpenBillInput{
		CustomerID: "C001",
		Total:      money.FromBaht(3000),
		BillDate:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = svc.ApplyPayment(ctx, settled.BillID, money.FromBaht(3000))
	require.NoError(t, err)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.PendingCount)
	require.Equal(t, 1, stats.OverdueCount)
	require.Equal(t, money.FromBaht(3000), stats.TotalDebt)
	require.Equal(t, money.FromBaht(2000), stats.DueThisMonth)
}

func TestLedgerMutationsBumpReportCache(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(10000), 30)
	reports := &recordingReportCache{}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, nil, reports, false)

	bill, err := svc.OpenBill(ctx, OpenBillInput{CustomerID: "C001", Total: money.FromBaht(1000)})
	require.NoError(t, err)
	require.Equal(t, 1, reports.bumps)

	_, err = svc.ApplyPayment(ctx, bill.BillID, money.FromBaht(400))
	require.NoError(t, err)
	require.Equal(t, 2, reports.bumps)

	// A rejected payment leaves the cache version alone.
	_, err = svc.ApplyPayment(ctx, bill.BillID, money.FromBaht(9999))
	require.ErrorIs(t, err, httpx.ErrOverPayment)
	require.Equal(t, 2, reports.bumps)

	_, err = svc.DeleteBill(ctx, bill.BillID)
	require.NoError(t, err)
	require.Equal(t, 3, reports.bumps)
}
