package shared

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog represents a record stored in audit_log. The POS runs as a
// single operator so there is no actor column; the entry captures what
// happened to which ledger entity.
type AuditLog struct {
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
}

// AuditLogger writes records into audit_log. Bill deletion erases payment
// state from the ledger; the audit trail is what keeps that history
// recoverable.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_log (action, entity, entity_id, meta) VALUES ($1, $2, $3, $4)`, log.Action, log.Entity, log.EntityID, metaJSON)
	return err
}
