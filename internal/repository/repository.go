package repository

import (
	"context"
	"database/sql"

	"shade_control/internal/models"
	"shade_control/internal/repository/db"
)

type Authorization interface {
	Create(name, email, role, hash string) (int, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id int) (*models.User, error)
	List() ([]models.User, error)
}

type ShadeRepo interface {
	List(ctx context.Context) ([]models.Shade, error)
	ListByArea(ctx context.Context, areaID int) ([]models.Shade, error)
	GetByID(ctx context.Context, id int) (*models.Shade, error)
	Create(ctx context.Context, s models.Shade) (int, error)
	// SetPosition writes both current and target position in one statement.
	SetPosition(ctx context.Context, shadeID, current, target int) error
	CountByStatus(ctx context.Context, status string) (int, error)
}

type ScheduleRepo interface {
	// Due returns the schedules that should fire right now: active, matching
	// weekday (or daily), start_time equal to hhmm, not yet executed on date,
	// owning device active. Each row carries the device's most recent manual
	// override timestamp, if any.
	Due(ctx context.Context, weekday, hhmm, date string) ([]models.DueSchedule, error)
	// MarkExecuted stamps last_executed_date conditionally, so a schedule is
	// stamped at most once per calendar day.
	MarkExecuted(ctx context.Context, scheduleID int, date string) error
	ListByShade(ctx context.Context, shadeID int) ([]models.Schedule, error)
	Create(ctx context.Context, s models.Schedule) (int, error)
	SetActive(ctx context.Context, id int, active bool) error
	Delete(ctx context.Context, id int) error
}

type OverrideRepo interface {
	// Append ends any open override for the shade and inserts the new one.
	Append(ctx context.Context, o models.ManualOverride) (int, error)
	ListActive(ctx context.Context) ([]models.ManualOverride, error)
	CountActive(ctx context.Context) (int, error)
}

type ActivityRepo interface {
	Append(ctx context.Context, e models.ActivityEntry) error
	List(ctx context.Context, typ string, userID, limit int) ([]models.ActivityEntry, error)
}

type AreaRepo interface {
	List(ctx context.Context) ([]models.Area, error)
	Create(ctx context.Context, a models.Area) (int, error)
}

type AlertRepo interface {
	Create(ctx context.Context, a models.Alert) (int, error)
	List(ctx context.Context) ([]models.Alert, error)
	ListOpen(ctx context.Context) ([]models.Alert, error)
	SetStatus(ctx context.Context, id int, status string) error
	CountOpen(ctx context.Context) (int, error)
}

type Repository struct {
	Shades    ShadeRepo
	Schedules ScheduleRepo
	Overrides OverrideRepo
	Activity  ActivityRepo
	Areas     AreaRepo
	Alerts    AlertRepo
	Auth      Authorization
}

func NewRepository(conn *sql.DB) *Repository {
	return &Repository{
		Shades:    NewShadeSQLite(conn),
		Schedules: NewScheduleSQLite(conn),
		Overrides: NewOverrideSQLite(conn),
		Activity:  NewActivitySQLite(conn),
		Areas:     NewAreaSQLite(conn),
		Alerts:    NewAlertSQLite(conn),
		Auth:      NewUserRepository(conn),
	}
}

// InitDB opens the SQLite file and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
