package sales

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for checkout and sale history.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers sales routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/cash", h.cash)
	r.Post("/credit", h.credit)
	r.Get("/{transactionID}", h.get)
}

type cartLineRequest struct {
	Barcode  string `json:"barcode" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type cashSaleRequest struct {
	Cart     []cartLineRequest `json:"cart" validate:"required,min=1,dive"`
	Received int64             `json:"received_amount" validate:"gt=0"`
}

type creditSaleRequest struct {
	Cart       []cartLineRequest `json:"cart" validate:"required,min=1,dive"`
	CustomerID string            `json:"customer_id" validate:"required"`
	CreditDays int               `json:"credit_days" validate:"gte=0"`
}

func toCart(lines []cartLineRequest) []CartLine {
	cart := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		cart = append(cart, CartLine{Barcode: l.Barcode, Quantity: l.Quantity})
	}
	return cart
}

func (h *Handler) cash(w http.ResponseWriter, r *http.Request) {
	var req cashSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sale, err := h.service.FinalizeCashSale(r.Context(), toCart(req.Cart), money.Money(req.Received))
	if err != nil {
		h.logger.Error("cash sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) credit(w http.ResponseWriter, r *http.Request) {
	var req creditSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.FinalizeCreditSale(r.Context(), toCart(req.Cart), req.CustomerID, req.CreditDays)
	if err != nil {
		h.logger.Error("credit sale", slog.Any("error", err), slog.String("customer_id", req.CustomerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service.Get(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	if fromRaw := r.URL.Query().Get("from"); fromRaw != "" {
		from, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from must be YYYY-MM-DD")
			return
		}
		to := from.AddDate(0, 0, 1)
		if toRaw := r.URL.Query().Get("to"); toRaw != "" {
			to, err = time.Parse("2006-01-02", toRaw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to must be YYYY-MM-DD")
				return
			}
			to = to.AddDate(0, 0, 1)
		}
		sales, err := h.service.ListByDateRange(r.Context(), from, to)
		if err != nil {
			h.logger.Error("list sales by range", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"sales": sales})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	sales, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": sales, "total": total})
}
