package receipt

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sabaipos/sabaipos/internal/invoices"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
	"github.com/sabaipos/sabaipos/internal/sales"
)

// SaleSource fetches sales for receipt rendering.
type SaleSource interface {
	Get(ctx context.Context, transactionID string) (*sales.Sale, error)
}

// InvoiceSource fetches invoice documents for PDF rendering.
type InvoiceSource interface {
	Get(ctx context.Context, transactionID string) (*invoices.Invoice, error)
}

// Handler renders receipts and invoices as PDF.
type Handler struct {
	logger   *slog.Logger
	client   *Client
	shop     ShopProfile
	sales    SaleSource
	invoices InvoiceSource
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, client *Client, shop ShopProfile, saleSource SaleSource, invoiceSource InvoiceSource) *Handler {
	return &Handler{logger: logger, client: client, shop: shop, sales: saleSource, invoices: invoiceSource}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/receipts/{transactionID}", h.receipt)
	r.Get("/invoices/{transactionID}", h.invoice)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	sale, err := h.sales.Get(r.Context(), transactionID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	html, err := BuildReceiptHTML(h.shop, sale)
	if err != nil {
		h.logger.Error("build receipt html", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.streamPDF(w, r, html, ReceiptPage, "receipt_"+transactionID+".pdf")
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	inv, err := h.invoices.Get(r.Context(), transactionID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	html, err := BuildInvoiceHTML(h.shop, inv)
	if err != nil {
		h.logger.Error("build invoice html", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.streamPDF(w, r, html, A4Page, "invoice_"+transactionID+".pdf")
}

func (h *Handler) streamPDF(w http.ResponseWriter, r *http.Request, html string, size PageSize, filename string) {
	pdf, err := h.client.RenderHTML(r.Context(), html, size)
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+filename+`"`)
	_, _ = w.Write(pdf)
}
