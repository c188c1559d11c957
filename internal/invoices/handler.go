package invoices

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for invoice documents.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{transactionID}", h.get)
	r.Post("/{transactionID}/payments", h.pay)
}

type invoiceItemRequest struct {
	Barcode  string `json:"barcode" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Price    int64  `json:"price" validate:"gte=0"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type createInvoiceRequest struct {
	TransactionID string               `json:"transaction_id" validate:"required"`
	CustomerName  string               `json:"customer_name" validate:"required"`
	CustomerPhone string               `json:"customer_phone"`
	CustomerAddr  string               `json:"customer_address"`
	DueDate       time.Time            `json:"due_date"`
	Items         []invoiceItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	items := make([]CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, CartItem{
			Barcode:  item.Barcode,
			Title:    item.Title,
			Price:    money.Money(item.Price),
			Quantity: item.Quantity,
		})
	}
	inv, err := h.service.Create(r.Context(), CreateInput{
		TransactionID: req.TransactionID,
		CustomerInfo: CustomerInfo{
			Name:    req.CustomerName,
			Phone:   req.CustomerPhone,
			Address: req.CustomerAddr,
		},
		DueDate:   req.DueDate,
		CartItems: items,
	})
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err), slog.String("transaction_id", req.TransactionID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

type invoicePaymentRequest struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	var req invoicePaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.ApplyPayment(r.Context(), transactionID, money.Money(req.Amount))
	if err != nil {
		h.logger.Error("invoice payment", slog.Any("error", err), slog.String("transaction_id", transactionID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Get(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		invs []Invoice
		err  error
	)
	if r.URL.Query().Get("status") == "unpaid" {
		invs, err = h.service.ListUnpaid(r.Context())
	} else {
		invs, err = h.service.ListAll(r.Context())
	}
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": invs})
}
