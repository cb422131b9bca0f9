package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is an entry of the Audit collection.
type AuditEntry struct {
	ID         uuid.UUID      `json:"id"`
	Org        string         `json:"org"`
	Actor      string         `json:"actor"` // "user", "system"
	Action     string         `json:"action"`
	Resource   string         `json:"resource"` // "payment", "payroll", ...
	ResourceID string         `json:"resourceId"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
