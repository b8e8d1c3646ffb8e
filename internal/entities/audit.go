package entities

import "time"

type AuditEventType string

const (
	AuditEventBook AuditEventType = "book"
	AuditEventLoan AuditEventType = "loan"
)

// Audit actions recorded by the inventory coordinator.
const (
	AuditActionBookAdd    = "book_add"
	AuditActionBookUpdate = "book_update"
	AuditActionBookDelete = "book_delete"
	AuditActionLoanBorrow = "loan_borrow"
	AuditActionLoanReturn = "loan_return"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "loan_borrow", "book_delete"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`  // "book" or "loan"
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
