package reports

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AuditLogger records export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures one status transition of an export.
type AuditEntry struct {
	ID         string            `json:"id"`
	ExportID   string            `json:"export_id"`
	Action     string            `json:"action"`
	Actor      string            `json:"actor,omitempty"`
	Report     Report            `json:"report"`
	Status     ExportStatus      `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// MemoryAuditLog captures audit entries in-memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ZapAuditLog writes audit entries as structured log lines.
type ZapAuditLog struct {
	logger *zap.Logger
}

// NewZapAuditLog returns an audit sink backed by logger.
func NewZapAuditLog(logger *zap.Logger) *ZapAuditLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAuditLog{logger: logger.Named("audit")}
}

// Record logs the entry at info level.
func (l *ZapAuditLog) Record(_ context.Context, entry AuditEntry) {
	fields := []zap.Field{
		zap.String("audit_id", entry.ID),
		zap.String("export_id", entry.ExportID),
		zap.String("action", entry.Action),
		zap.String("actor", entry.Actor),
		zap.String("report", string(entry.Report)),
		zap.String("status", string(entry.Status)),
		zap.Time("occurred_at", entry.OccurredAt),
	}
	if len(entry.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", entry.Metadata))
	}
	l.logger.Info("export audit", fields...)
}
