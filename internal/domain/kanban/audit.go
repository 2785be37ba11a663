package kanban

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is an append-only trace of a successful mutation. Records
// are written by an event handler after commit; they are observability
// data, never consulted for correctness.
type AuditRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	AggregateType string    `gorm:"type:varchar(32);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null;index"`
	EventType     string    `gorm:"type:varchar(64);not null"`
	Operation     string    `gorm:"type:varchar(16);not null"`
	OldPosition   *int      ``
	NewPosition   *int      ``
	OldVersion    *int      ``
	NewVersion    *int      ``
	Rebalanced    bool      `gorm:"not null;default:false"`
	OccurredAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditRecord) TableName() string {
	return "audit_records"
}
