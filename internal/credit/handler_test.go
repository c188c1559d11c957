package credit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sabaipos/sabaipos/internal/money"
)

func newTestRouter(repo *memoryCreditRepo) http.Handler {
	svc, _ := newTestService(repo, false)
	handler := NewHandler(svc.logger, svc)
	r := chi.NewRouter()
	r.Route("/credit-bills", handler.MountRoutes)
	return r
}

func TestOpenBillEndpoint(t *testing.T) {
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(10000), 30)
	router := newTestRouter(repo)

	body := bytes.NewBufferString(`{"customer_id":"C001","total_amount":150000,"notes":"wholesale order"}`)
	req := httptest.NewRequest(http.MethodPost, "/credit-bills", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var bill Bill
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bill))
	require.Equal(t, money.Money(150000), bill.TotalAmount)
	require.Equal(t, StatusPending, bill.Status)
	require.NotEmpty(t, bill.BillID)
}

func TestOpenBillEndpointRejectsZeroTotal(t *testing.T) {
	router := newTestRouter(newMemoryCreditRepo())

	body := bytes.NewBufferString(`{"customer_id":"C001","total_amount":0}`)
	req := httptest.NewRequest(http.MethodPost, "/credit-bills", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentEndpointOverpayment(t *testing.T) {
	repo := newMemoryCreditRepo()
	repo.addCustomer("C001", "Somchai", money.FromBaht(10000), 30)
	router := newTestRouter(repo)

	body := bytes.NewBufferString(`{"customer_id":"C001","total_amount":50000}`)
	req := httptest.NewRequest(http.MethodPost, "/credit-bills", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var bill Bill
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bill))

	payBody := bytes.NewBufferString(`{"amount":60000}`)
	payReq := httptest.NewRequest(http.MethodPost, "/credit-bills/"+bill.BillID+"/payments", payBody)
	payReq.Header.Set("Content-Type", "application/json")
	payRec := httptest.NewRecorder()
	router.ServeHTTP(payRec, payReq)

	require.Equal(t, http.StatusUnprocessableEntity, payRec.Code)
}

func TestGetBillEndpointNotFound(t *testing.T) {
	router := newTestRouter(newMemoryCreditRepo())

	req := httptest.NewRequest(http.MethodGet, "/credit-bills/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
