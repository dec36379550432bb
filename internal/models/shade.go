package models

// Shade operational statuses. Only active devices are eligible for
// automatic schedule execution.
const (
	StatusActive           = "active"
	StatusUnderMaintenance = "under_maintenance"
	StatusInactive         = "inactive"
)

// Shade is a single automatic window-shading device. Positions are percent
// open, 0–100.
type Shade struct {
	ID              int    `json:"id"`
	AreaID          int    `json:"area_id"`
	Description     string `json:"description"`
	Type            string `json:"type"` // roller | venetian | blackout
	CurrentPosition int    `json:"current_position"`
	TargetPosition  int    `json:"target_position"`
	Status          string `json:"status"` // active | under_maintenance | inactive
	InstalledBy     int    `json:"installed_by_user_id,omitempty"`
}
