package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shade_control/internal/models"
	"shade_control/internal/repository"
)

var (
	errInvalidScheduleName = errors.New("schedule name is required")
	errInvalidDayOfWeek    = errors.New("day_of_week must be a weekday name or 'daily'")
	errInvalidStartTime    = errors.New("start_time must be HH:MM")
	ErrScheduleNotFound    = errors.New("schedule not found")
)

var validDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true, "daily": true,
}

type ScheduleService struct {
	scheduleRepo repository.ScheduleRepo
	shadeRepo    repository.ShadeRepo
	activityRepo repository.ActivityRepo
}

func NewScheduleService(scheduleRepo repository.ScheduleRepo, shadeRepo repository.ShadeRepo, activityRepo repository.ActivityRepo) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		shadeRepo:    shadeRepo,
		activityRepo: activityRepo,
	}
}

var _ Schedules = (*ScheduleService)(nil)

func (s *ScheduleService) ListByShade(ctx context.Context, shadeID int) ([]models.Schedule, error) {
	return s.scheduleRepo.ListByShade(ctx, shadeID)
}

// Create validates and inserts a new schedule, active by default.
func (s *ScheduleService) Create(ctx context.Context, p CreateScheduleParams) (int, error) {
	if strings.TrimSpace(p.Name) == "" {
		return 0, errInvalidScheduleName
	}
	day := strings.ToLower(strings.TrimSpace(p.DayOfWeek))
	if !validDays[day] {
		return 0, errInvalidDayOfWeek
	}
	start, err := normalizeClockTime(p.StartTime)
	if err != nil {
		return 0, errInvalidStartTime
	}
	end := ""
	if p.EndTime != "" {
		if end, err = normalizeClockTime(p.EndTime); err != nil {
			return 0, errInvalidStartTime
		}
	}
	if !validPosition(p.TargetPosition) {
		return 0, errInvalidPosition
	}

	shade, err := s.shadeRepo.GetByID(ctx, p.ShadeID)
	if err != nil {
		return 0, err
	}
	if shade == nil {
		return 0, ErrShadeNotFound
	}

	id, err := s.scheduleRepo.Create(ctx, models.Schedule{
		ShadeID:        p.ShadeID,
		Name:           p.Name,
		DayOfWeek:      day,
		StartTime:      start,
		EndTime:        end,
		TargetPosition: p.TargetPosition,
		IsActive:       true,
		CreatedBy:      p.CreatedBy,
	})
	if err != nil {
		return 0, err
	}

	desc := fmt.Sprintf("New schedule created: %s for shade %d", p.Name, p.ShadeID)
	_ = s.activityRepo.Append(ctx, models.ActivityEntry{
		Type:        models.ActivitySchedule,
		Description: desc,
		UserID:      p.CreatedBy,
	})
	return id, nil
}

// SetActive soft-deactivates (or reactivates) a schedule.
func (s *ScheduleService) SetActive(ctx context.Context, id int, active bool) error {
	return s.scheduleRepo.SetActive(ctx, id, active)
}

// Delete hard-deletes a schedule.
func (s *ScheduleService) Delete(ctx context.Context, id int) error {
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrScheduleNotFound
		}
		return err
	}
	return nil
}

// normalizeClockTime accepts "H:MM", "HH:MM" or "HH:MM:SS" and returns the
// minute-resolution "HH:MM" form the due query matches on.
func normalizeClockTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("invalid clock time %q", s)
}
