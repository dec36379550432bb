package models

import "time"

// Activity entry types.
const (
	ActivitySchedule = "schedule"
	ActivityOverride = "override"
	ActivityDevice   = "device"
	ActivityAlert    = "alert"
	ActivitySystem   = "system"
)

// ActivityEntry is a single audit-trail record. Append-only.
type ActivityEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // schedule | override | device | alert | system
	Description string    `json:"description"`
	UserID      int       `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
