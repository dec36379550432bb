package service

import (
	"context"
	"errors"
	"fmt"

	"shade_control/internal/models"
	"shade_control/internal/repository"
)

var (
	errInvalidShadeArea = errors.New("area_id is required")
	errInvalidShadeDesc = errors.New("description is required")
	errInvalidPosition  = errors.New("position must be between 0 and 100")
	errInvalidOverride  = errors.New("invalid override_type: must be open, close, or partial")
	ErrShadeNotFound    = errors.New("shade not found")
)

type ShadeService struct {
	shadeRepo    repository.ShadeRepo
	overrideRepo repository.OverrideRepo
	activityRepo repository.ActivityRepo
}

func NewShadeService(shadeRepo repository.ShadeRepo, overrideRepo repository.OverrideRepo, activityRepo repository.ActivityRepo) *ShadeService {
	return &ShadeService{
		shadeRepo:    shadeRepo,
		overrideRepo: overrideRepo,
		activityRepo: activityRepo,
	}
}

var _ Shades = (*ShadeService)(nil)

func validPosition(p int) bool { return p >= 0 && p <= 100 }

func (s *ShadeService) List(ctx context.Context) ([]models.Shade, error) {
	return s.shadeRepo.List(ctx)
}

func (s *ShadeService) ListByArea(ctx context.Context, areaID int) ([]models.Shade, error) {
	return s.shadeRepo.ListByArea(ctx, areaID)
}

// Create validates and inserts a new device, logging the installation.
func (s *ShadeService) Create(ctx context.Context, p CreateShadeParams) (int, error) {
	if p.AreaID <= 0 {
		return 0, errInvalidShadeArea
	}
	if p.Description == "" {
		return 0, errInvalidShadeDesc
	}
	if !validPosition(p.CurrentPosition) || !validPosition(p.TargetPosition) {
		return 0, errInvalidPosition
	}

	id, err := s.shadeRepo.Create(ctx, models.Shade{
		AreaID:          p.AreaID,
		Description:     p.Description,
		Type:            p.Type,
		CurrentPosition: p.CurrentPosition,
		TargetPosition:  p.TargetPosition,
		Status:          models.StatusActive,
		InstalledBy:     p.InstalledBy,
	})
	if err != nil {
		return 0, err
	}

	desc := fmt.Sprintf("New shade device installed: %s (%s) in area %d", p.Description, p.Type, p.AreaID)
	if err := s.activityRepo.Append(ctx, models.ActivityEntry{
		Type:        models.ActivityDevice,
		Description: desc,
		UserID:      p.InstalledBy,
	}); err != nil {
		// Device exists; a lost audit line is not worth failing the call.
		return id, nil
	}
	return id, nil
}

// Override is the manual control path: it records the override, moves the
// device to the requested position and logs the action. The reconciliation
// engine reads the override's timestamp during arbitration.
func (s *ShadeService) Override(ctx context.Context, p OverrideParams) (int, error) {
	switch p.Type {
	case models.OverrideOpen:
		p.Position = 100
	case models.OverrideClose:
		p.Position = 0
	case models.OverridePartial:
		if !validPosition(p.Position) {
			return 0, errInvalidPosition
		}
	default:
		return 0, errInvalidOverride
	}

	shade, err := s.shadeRepo.GetByID(ctx, p.ShadeID)
	if err != nil {
		return 0, err
	}
	if shade == nil {
		return 0, ErrShadeNotFound
	}

	id, err := s.overrideRepo.Append(ctx, models.ManualOverride{
		ShadeID:  p.ShadeID,
		UserID:   p.UserID,
		Type:     p.Type,
		Position: p.Position,
		Reason:   p.Reason,
	})
	if err != nil {
		return 0, err
	}

	if err := s.shadeRepo.SetPosition(ctx, p.ShadeID, p.Position, p.Position); err != nil {
		return 0, err
	}

	desc := fmt.Sprintf("Manual override: %s shade %d to position %d", p.Type, p.ShadeID, p.Position)
	_ = s.activityRepo.Append(ctx, models.ActivityEntry{
		Type:        models.ActivityOverride,
		Description: desc,
		UserID:      p.UserID,
	})
	return id, nil
}

func (s *ShadeService) ActiveOverrides(ctx context.Context) ([]models.ManualOverride, error) {
	return s.overrideRepo.ListActive(ctx)
}
