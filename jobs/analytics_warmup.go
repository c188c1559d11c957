package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sabaipos/sabaipos/internal/analytics"
)

// AnalyticsWarmup bumps the report cache version and re-primes the
// current month's reports so the first dashboard hit after a refresh
// stays fast.
type AnalyticsWarmup struct {
	logger    *slog.Logger
	analytics *analytics.Service
}

// NewAnalyticsWarmup constructs the warmup handler.
func NewAnalyticsWarmup(logger *slog.Logger, analyticsService *analytics.Service) *AnalyticsWarmup {
	return &AnalyticsWarmup{logger: logger, analytics: analyticsService}
}

// Handle processes TaskAnalyticsWarmup tasks.
func (w *AnalyticsWarmup) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := w.analytics.Invalidate(ctx); err != nil {
		return err
	}
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)
	if _, err := w.analytics.ProfitReport(ctx, from, to); err != nil {
		return err
	}
	if _, err := w.analytics.CreditOverview(ctx); err != nil {
		return err
	}
	w.logger.Info("analytics cache warmed", slog.Time("month", from))
	return nil
}
