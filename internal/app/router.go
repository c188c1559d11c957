package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/sabaipos/sabaipos/internal/analytics/http"
	"github.com/sabaipos/sabaipos/internal/catalog"
	"github.com/sabaipos/sabaipos/internal/credit"
	"github.com/sabaipos/sabaipos/internal/customers"
	"github.com/sabaipos/sabaipos/internal/invoices"
	"github.com/sabaipos/sabaipos/internal/receipt"
	"github.com/sabaipos/sabaipos/internal/sales"
	"github.com/sabaipos/sabaipos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CatalogHandler   *catalog.Handler
	CustomersHandler *customers.Handler
	CreditHandler    *credit.Handler
	InvoicesHandler  *invoices.Handler
	SalesHandler     *sales.Handler
	AnalyticsHandler *analytichttp.Handler
	ReceiptHandler   *receipt.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(params.Logger, params.Config) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", params.CatalogHandler.MountRoutes)
		r.Route("/customers", params.CustomersHandler.MountRoutes)
		r.Route("/credit-bills", params.CreditHandler.MountRoutes)
		r.Route("/invoices", params.InvoicesHandler.MountRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		r.Route("/documents", params.ReceiptHandler.MountRoutes)
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	})

	return r
}
