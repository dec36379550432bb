package service

import "shade_control/internal/models"

type CreateShadeParams struct {
	AreaID          int    // required
	Description     string // required
	Type            string // roller | venetian | blackout
	CurrentPosition int    // 0-100
	TargetPosition  int    // 0-100
	InstalledBy     int
}

type OverrideParams struct {
	ShadeID  int
	UserID   int
	Type     string // open | close | partial
	Position int    // 0-100; implied 100 for open, 0 for close
	Reason   string
}

type CreateScheduleParams struct {
	ShadeID        int
	Name           string
	DayOfWeek      string // monday..sunday | daily
	StartTime      string // "HH:MM"
	EndTime        string
	TargetPosition int    // 0-100
	CreatedBy      int
}

type CreateAreaParams struct {
	BuildingNumber string
	Floor          int
	Room           string
	RoomNumber     string
	Description    string
}

type CreateAlertParams struct {
	Description string
	Location    string
	Priority    string // low | medium | high
	CreatedBy   int
	AssignedTo  int
}

type CreateUserParams struct {
	Name     string
	Email    string
	Role     string // admin | maintenance | planner
	Password string
}

// ActivityFilter narrows the audit-trail listing.
type ActivityFilter struct {
	Type   string // "", schedule, override, device, alert, system
	UserID int    // 0 means any user
	Limit  int    // 0 means default
}

// Building groups a building's areas by floor for the dashboard map view.
type Building struct {
	BuildingNumber string                `json:"building_number"`
	Floors         map[int][]models.Area `json:"floors"`
}
