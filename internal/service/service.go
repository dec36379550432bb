package service

import (
	"context"
	"time"

	"shade_control/internal/logger"
	"shade_control/internal/models"
	"shade_control/internal/repository"
)

type Authorization interface {
	// GenerateToken validates credentials and returns a signed JWT.
	GenerateToken(email, password string) (string, error)
	// ParseToken verifies a JWT and returns the embedded identity.
	ParseToken(accessToken string) (*TokenClaims, error)
	GetUser(id int) (*models.User, error)
	CreateUser(p CreateUserParams) (int, error)
	ListUsers() ([]models.User, error)
}

// Shades exposes device CRUD and the manual-override control path.
type Shades interface {
	List(ctx context.Context) ([]models.Shade, error)
	ListByArea(ctx context.Context, areaID int) ([]models.Shade, error)
	Create(ctx context.Context, p CreateShadeParams) (int, error)
	// Override applies a manual position change: records the override,
	// moves the device and logs the action.
	Override(ctx context.Context, p OverrideParams) (int, error)
	ActiveOverrides(ctx context.Context) ([]models.ManualOverride, error)
}

// Schedules exposes schedule CRUD with validation.
type Schedules interface {
	ListByShade(ctx context.Context, shadeID int) ([]models.Schedule, error)
	Create(ctx context.Context, p CreateScheduleParams) (int, error)
	SetActive(ctx context.Context, id int, active bool) error
	Delete(ctx context.Context, id int) error
}

// Scheduler is the reconciliation engine: a periodic process that applies
// due schedules to devices unless a recent manual override wins.
type Scheduler interface {
	Start()
	Stop()
	RunNow(ctx context.Context) (time.Time, error)
	Status() SchedulerStatus
	UpdateSettings(p SettingsPatch) (SchedulerSettings, error)
}

type Areas interface {
	ListGrouped(ctx context.Context) (map[string]Building, error)
	Create(ctx context.Context, p CreateAreaParams) (int, error)
}

type Alerts interface {
	Create(ctx context.Context, p CreateAlertParams) (int, error)
	List(ctx context.Context) ([]models.Alert, error)
	SetStatus(ctx context.Context, id int, status string, userID int) error
}

// Dashboard exposes the read-only aggregates the UI polls.
type Dashboard interface {
	Metrics(ctx context.Context) ([]Metric, error)
	Activities(ctx context.Context, f ActivityFilter) ([]models.ActivityEntry, error)
	OpenAlerts(ctx context.Context) ([]models.Alert, error)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Shades
	Schedules
	Scheduler
	Areas
	Alerts
	Dashboard
	Authorization
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, log *logger.Logger, signingKey string) *Service {
	return &Service{
		Shades:        NewShadeService(repos.Shades, repos.Overrides, repos.Activity),
		Schedules:     NewScheduleService(repos.Schedules, repos.Shades, repos.Activity),
		Scheduler:     NewSchedulerService(repos.Schedules, repos.Shades, repos.Activity, log),
		Areas:         NewAreaService(repos.Areas),
		Alerts:        NewAlertService(repos.Alerts, repos.Activity),
		Dashboard:     NewDashboardService(repos.Shades, repos.Alerts, repos.Overrides, repos.Activity),
		Authorization: NewAuthService(repos.Auth, signingKey),
	}
}
