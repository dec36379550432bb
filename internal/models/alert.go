package models

import "time"

// Alert statuses.
const (
	AlertActive       = "active"
	AlertAcknowledged = "acknowledged"
	AlertResolved     = "resolved"
)

// Alert is a facility issue raised by an operator or maintenance staff.
type Alert struct {
	ID          int       `json:"id"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Priority    string    `json:"priority"` // low | medium | high
	Status      string    `json:"status"`   // active | acknowledged | resolved
	CreatedBy   int       `json:"created_by_user_id,omitempty"`
	AssignedTo  int       `json:"assigned_to_user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
