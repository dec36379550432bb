package models

import "time"

// Manual override kinds.
const (
	OverrideOpen    = "open"
	OverrideClose   = "close"
	OverridePartial = "partial"
)

// ManualOverride records a human taking direct control of a shade. The
// reconciliation engine only ever reads the most recent one per device; it
// never writes this table.
type ManualOverride struct {
	ID        int        `json:"id"`
	ShadeID   int        `json:"shade_id"`
	UserID    int        `json:"user_id"`
	Type      string     `json:"override_type"` // open | close | partial
	Position  int        `json:"position"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
