package credit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the credit bill ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers credit ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.open)
	r.Get("/statistics", h.statistics)
	r.Get("/{billID}", h.get)
	r.Delete("/{billID}", h.delete)
	r.Post("/{billID}/payments", h.pay)
}

type openBillRequest struct {
	CustomerID    string `json:"customer_id" validate:"required"`
	TransactionID string `json:"transaction_id"`
	Total         int64  `json:"total_amount" validate:"gt=0"`
	Notes         string `json:"notes"`
}

type paymentRequest struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req openBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	bill, err := h.service.OpenBill(r.Context(), OpenBillInput{
		CustomerID:    req.CustomerID,
		TransactionID: req.TransactionID,
		Total:         money.Money(req.Total),
		Notes:         req.Notes,
	})
	if err != nil {
		h.logger.Error("open bill", slog.Any("error", err), slog.String("customer_id", req.CustomerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "billID")
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	bill, err := h.service.ApplyPayment(r.Context(), billID, money.Money(req.Amount))
	if err != nil {
		h.logger.Error("apply payment", slog.Any("error", err), slog.String("bill_id", billID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "billID")
	warned, err := h.service.DeleteBill(r.Context(), billID)
	if err != nil {
		h.logger.Error("delete bill", slog.Any("error", err), slog.String("bill_id", billID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true, "had_payments": warned})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.Get(r.Context(), chi.URLParam(r, "billID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

// list answers /credit-bills with optional filters. status=pending
// narrows to open bills, status=overdue to bills past due, and
// customer_id to one customer's history.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		bills []Bill
		err   error
	)
	switch {
	case r.URL.Query().Get("customer_id") != "":
		bills, err = h.service.ListByCustomer(r.Context(), r.URL.Query().Get("customer_id"))
	case r.URL.Query().Get("status") == "pending":
		bills, err = h.service.ListPending(r.Context())
	case r.URL.Query().Get("status") == "overdue":
		bills, err = h.service.ListOverdue(r.Context())
	default:
		bills, err = h.service.ListAll(r.Context())
	}
	if err != nil {
		h.logger.Error("list bills", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		h.logger.Error("credit statistics", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
