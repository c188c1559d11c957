package invoices

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(NewStore(client))
}

func newInvoice(t *testing.T, svc *Service, id string) *Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), CreateInput{
		TransactionID: id,
		CustomerInfo:  CustomerInfo{Name: "Somchai", Phone: "081-000-0000"},
		DueDate:       time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		CartItems: []CartItem{
			{Barcode: "885001", Title: "Rice 5kg", Price: money.FromBaht(250), Quantity: 2},
			{Barcode: "885002", Title: "Fish Sauce", Price: money.FromBaht(50), Quantity: 1},
		},
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInvoice(t *testing.T) {
	svc := newTestService(t)
	inv := newInvoice(t, svc, "T000001")

	require.Equal(t, money.FromBaht(550), inv.Subtotal)
	require.Equal(t, money.VAT(inv.Subtotal), inv.VAT)
	require.Equal(t, inv.Subtotal+inv.VAT, inv.GrandTotal)
	require.Equal(t, inv.GrandTotal, inv.RemainingAmount)
	require.Equal(t, StatusUnpaid, inv.Status)
	require.Empty(t, inv.PaymentHistory)

	stored, err := svc.Get(context.Background(), "T000001")
	require.NoError(t, err)
	require.Equal(t, inv.GrandTotal, stored.GrandTotal)
	require.Len(t, stored.CartItems, 2)
}

func TestCreateInvoiceDuplicate(t *testing.T) {
	svc := newTestService(t)
	newInvoice(t, svc, "T000001")

	_, err := svc.Create(context.Background(), CreateInput{
		TransactionID: "T000001",
		CustomerInfo:  CustomerInfo{Name: "Somsak"},
		CartItems:     []CartItem{{Barcode: "x", Title: "x", Price: 100, Quantity: 1}},
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestApplyPaymentAdvancesHistoryAndBalance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	inv := newInvoice(t, svc, "T000001")

	half := inv.GrandTotal / 2
	after, err := svc.ApplyPayment(ctx, "T000001", half)
	require.NoError(t, err)
	require.Equal(t, StatusPartial, after.Status)
	require.Equal(t, half, after.PaidAmount)
	require.Len(t, after.PaymentHistory, 1)
	require.Equal(t, half, after.PaymentHistory[0].Amount)
	require.Equal(t, after.RemainingAmount, after.PaymentHistory[0].Remaining)

	// The stored document must match what the call returned.
	stored, err := svc.Get(ctx, "T000001")
	require.NoError(t, err)
	require.Equal(t, after.PaidAmount, stored.PaidAmount)
	require.Len(t, stored.PaymentHistory, 1)

	final, err := svc.ApplyPayment(ctx, "T000001", stored.RemainingAmount)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, final.Status)
	require.Equal(t, money.Money(0), final.RemainingAmount)
	require.Len(t, final.PaymentHistory, 2)
	require.Equal(t, money.Money(0), final.PaymentHistory[1].Remaining)
}

func TestApplyPaymentRejectsZeroAndOverpayment(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	inv := newInvoice(t, svc, "T000001")

	_, err := svc.ApplyPayment(ctx, "T000001", 0)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.ApplyPayment(ctx, "T000001", inv.GrandTotal+1)
	require.ErrorIs(t, err, httpx.ErrOverPayment)

	// Rejected payments leave the document untouched.
	stored, err := svc.Get(ctx, "T000001")
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, stored.Status)
	require.Empty(t, stored.PaymentHistory)
}

func TestApplyPaymentUnknownInvoice(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ApplyPayment(context.Background(), "T999999", money.FromBaht(10))
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListUnpaid(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	newInvoice(t, svc, "T000001")
	second := newInvoice(t, svc, "T000002")

	_, err := svc.ApplyPayment(ctx, second.TransactionID, second.GrandTotal)
	require.NoError(t, err)

	unpaid, err := svc.ListUnpaid(ctx)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	require.Equal(t, "T000001", unpaid[0].TransactionID)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
