package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shade_control/internal/models"
	"shade_control/internal/repository"
)

var (
	errInvalidAlert       = errors.New("description, location and priority are required")
	errInvalidAlertStatus = errors.New("status must be active, acknowledged or resolved")
	ErrAlertNotFound      = errors.New("alert not found")
)

type AlertService struct {
	alertRepo    repository.AlertRepo
	activityRepo repository.ActivityRepo
}

func NewAlertService(alertRepo repository.AlertRepo, activityRepo repository.ActivityRepo) *AlertService {
	return &AlertService{alertRepo: alertRepo, activityRepo: activityRepo}
}

var _ Alerts = (*AlertService)(nil)

func (s *AlertService) Create(ctx context.Context, p CreateAlertParams) (int, error) {
	if p.Description == "" || p.Location == "" || p.Priority == "" {
		return 0, errInvalidAlert
	}

	id, err := s.alertRepo.Create(ctx, models.Alert{
		Description: p.Description,
		Location:    p.Location,
		Priority:    p.Priority,
		Status:      models.AlertActive,
		CreatedBy:   p.CreatedBy,
		AssignedTo:  p.AssignedTo,
	})
	if err != nil {
		return 0, err
	}

	desc := fmt.Sprintf("Alert raised at %s: %s", p.Location, p.Description)
	_ = s.activityRepo.Append(ctx, models.ActivityEntry{
		Type:        models.ActivityAlert,
		Description: desc,
		UserID:      p.CreatedBy,
	})
	return id, nil
}

func (s *AlertService) List(ctx context.Context) ([]models.Alert, error) {
	return s.alertRepo.List(ctx)
}

// SetStatus acknowledges or resolves an alert and logs the transition.
func (s *AlertService) SetStatus(ctx context.Context, id int, status string, userID int) error {
	switch status {
	case models.AlertActive, models.AlertAcknowledged, models.AlertResolved:
	default:
		return errInvalidAlertStatus
	}

	if err := s.alertRepo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlertNotFound
		}
		return err
	}

	desc := fmt.Sprintf("Alert %d marked %s", id, status)
	_ = s.activityRepo.Append(ctx, models.ActivityEntry{
		Type:        models.ActivityAlert,
		Description: desc,
		UserID:      userID,
	})
	return nil
}
