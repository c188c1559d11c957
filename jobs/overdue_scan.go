package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/sabaipos/sabaipos/internal/credit"
	"github.com/sabaipos/sabaipos/internal/money"
)

// OverdueScanner sweeps the credit ledger for bills past their due date
// and reports them. It never mutates bills; overdue is a query state,
// not a stored one.
type OverdueScanner struct {
	logger *slog.Logger
	credit *credit.Service
}

// NewOverdueScanner constructs the scan handler.
func NewOverdueScanner(logger *slog.Logger, creditService *credit.Service) *OverdueScanner {
	return &OverdueScanner{logger: logger, credit: creditService}
}

// Handle processes TaskCreditOverdueScan tasks.
func (s *OverdueScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	bills, err := s.credit.ListOverdue(ctx)
	if err != nil {
		return err
	}
	if len(bills) == 0 {
		s.logger.Info("overdue scan clean")
		return nil
	}
	var outstanding money.Money
	for _, bill := range bills {
		outstanding += bill.RemainingAmount
		s.logger.Warn("bill overdue",
			slog.String("bill_id", bill.BillID),
			slog.String("customer_id", bill.CustomerID),
			slog.String("customer", bill.CustomerName),
			slog.Time("due_date", bill.DueDate),
			slog.String("remaining", bill.RemainingAmount.String()))
	}
	s.logger.Warn("overdue scan complete",
		slog.Int("bills", len(bills)),
		slog.String("outstanding", outstanding.String()))
	return nil
}
