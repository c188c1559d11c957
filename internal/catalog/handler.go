package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sabaipos/sabaipos/internal/money"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the product catalog.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/low-stock", h.lowStock)
	r.Get("/{barcode}", h.get)
	r.Put("/{barcode}", h.update)
	r.Delete("/{barcode}", h.delete)
}

type productRequest struct {
	Barcode      string `json:"barcode" validate:"required"`
	Title        string `json:"title" validate:"required"`
	Price        int64  `json:"price" validate:"gte=0"`
	Cost         int64  `json:"cost" validate:"gte=0"`
	Quantity     int    `json:"quantity" validate:"gte=0"`
	Unit         string `json:"unit"`
	Category     string `json:"category"`
	ReorderPoint int    `json:"reorder_point" validate:"gte=0"`
	Supplier     string `json:"supplier"`
}

func (req productRequest) toInput() ProductInput {
	return ProductInput{
		Barcode:      req.Barcode,
		Title:        req.Title,
		Price:        money.Money(req.Price),
		Cost:         money.Money(req.Cost),
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Category:     req.Category,
		ReorderPoint: req.ReorderPoint,
		Supplier:     req.Supplier,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		h.logger.Error("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	req.Barcode = barcode
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.Update(r.Context(), barcode, req.toInput())
	if err != nil {
		h.logger.Error("update product", slog.Any("error", err), slog.String("barcode", barcode))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	if err := h.service.Delete(r.Context(), barcode); err != nil {
		h.logger.Error("delete product", slog.Any("error", err), slog.String("barcode", barcode))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	product, err := h.service.Get(r.Context(), barcode)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	products, total, err := h.service.List(r.Context(), ListFilter{
		Search:   r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products, "total": total})
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListLowStock(r.Context())
	if err != nil {
		h.logger.Error("list low stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}
