package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Log matches the audit_logs table schema. Append-only record of terminal
// fulfillment outcomes.
type Log struct {
	ID        uuid.UUID       `json:"id"`
	UserID    int64           `json:"user_id"`
	EventType string          `json:"event_type"`
	Outcome   string          `json:"outcome"`
	UID       string          `json:"uid"`
	Region    string          `json:"region"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}
