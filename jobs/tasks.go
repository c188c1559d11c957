package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCreditOverdueScan sweeps the credit ledger for bills past due.
	TaskCreditOverdueScan = "credit:overdue_scan"
	// TaskAnalyticsWarmup refreshes the report cache.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// ScanPayload carries scheduling metadata shared by periodic tasks.
type ScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewCreditOverdueScanTask constructs an Asynq task for the overdue sweep.
func NewCreditOverdueScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCreditOverdueScan, body, asynq.Queue(QueueDefault)), nil
}

// NewAnalyticsWarmupTask constructs an Asynq task for the cache warmup.
func NewAnalyticsWarmupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, body, asynq.Queue(QueueDefault)), nil
}
