package repo

import (
	"context"

	"cfgvault/internal/platform/store"
	"cfgvault/internal/services/trigger/domain"
)

// chAudit appends trigger events to ClickHouse when a connection exists
type chAudit struct{ ch store.Clickhouse }

// NewAudit wraps the optional ClickHouse seam as a domain.AuditSink.
// A nil seam yields a sink that drops events
func NewAudit(ch store.Clickhouse) domain.AuditSink { return &chAudit{ch: ch} }

// Append implements domain.AuditSink
func (a *chAudit) Append(ctx context.Context, ev domain.AuditEvent) error {
	if a.ch == nil {
		return nil
	}
	return a.ch.Insert(ctx, "backup_events", ev)
}
