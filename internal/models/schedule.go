package models

import "time"

// Schedule is a time-based automation rule for one shade: at StartTime on
// days matching DayOfWeek, move the shade to TargetPosition. A schedule
// executes at most once per calendar day; LastExecuted records the last day
// it fired (or was skipped for a conflict).
type Schedule struct {
	ID             int       `json:"id"`
	ShadeID        int       `json:"shade_id"`
	Name           string    `json:"name"`
	DayOfWeek      string    `json:"day_of_week"` // monday..sunday | daily
	StartTime      string    `json:"start_time"`  // "HH:MM", minute resolution
	EndTime        string    `json:"end_time,omitempty"`
	TargetPosition int       `json:"target_position"`
	IsActive       bool      `json:"is_active"`
	LastExecuted   string    `json:"last_executed_date,omitempty"` // "YYYY-MM-DD", empty if never
	CreatedBy      int       `json:"created_by_user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// DueSchedule is one row of the due-set query: a schedule that should fire in
// the current tick, joined with its device and the timestamp of the device's
// most recent manual override (nil if none was ever recorded).
type DueSchedule struct {
	ScheduleID      int
	ShadeID         int
	Name            string
	TargetPosition  int
	CreatedBy       int
	DeviceName      string
	CurrentPosition int
	LastOverride    *time.Time
}
