package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited operator action.
type AuditAction string

const (
	AuditActionReprocess       AuditAction = "REPROCESS"
	AuditActionForcedReprocess AuditAction = "FORCED_REPROCESS"
)

// AuditLog records a single operator action against the event ledger.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	OperatorID   *string     `json:"operator_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
