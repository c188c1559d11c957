package analytichttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sabaipos/sabaipos/internal/analytics"
	"github.com/sabaipos/sabaipos/internal/analytics/export"
	"github.com/sabaipos/sabaipos/internal/credit"
	"github.com/sabaipos/sabaipos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for reports and exports.
type Handler struct {
	logger  *slog.Logger
	service *analytics.Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *analytics.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profit", h.profit)
	r.Get("/credit-overview", h.creditOverview)
	r.Get("/dashboard", h.dashboard)
}

// parseRange reads from/to query params as dates, defaulting to the
// current calendar month. The returned range is half-open.
func parseRange(r *http.Request) (time.Time, time.Time, bool) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)
	if fromRaw != "" {
		parsed, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if toRaw != "" {
		parsed, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, true
}

func (h *Handler) profit(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from/to must be YYYY-MM-DD")
		return
	}
	report, err := h.service.ProfitReport(r.Context(), from, to)
	if err != nil {
		h.logger.Error("profit report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="profit.csv"`)
		if err := export.WriteProfitCSV(w, report); err != nil {
			h.logger.Error("write profit csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) creditOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.CreditOverview(r.Context())
	if err != nil {
		h.logger.Error("credit overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="credit_overview.csv"`)
		if err := export.WriteCreditOverviewCSV(w, stats); err != nil {
			h.logger.Error("write credit overview csv", slog.Any("error", err))
		}
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

// dashboard bundles the profit summary and the credit overview for the
// landing screen, fetching both concurrently.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from/to must be YYYY-MM-DD")
		return
	}

	var (
		report *analytics.ProfitReport
		stats  *credit.Statistics
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		report, err = h.service.ProfitReport(ctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = h.service.CreditOverview(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"profit": report.Summary,
		"credit": stats,
	})
}
