package service

import (
	"context"

	"shade_control/internal/models"
	"shade_control/internal/repository"
)

// Metric is one dashboard headline card.
type Metric struct {
	Title string `json:"title"`
	Value int    `json:"value"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type DashboardService struct {
	shadeRepo    repository.ShadeRepo
	alertRepo    repository.AlertRepo
	overrideRepo repository.OverrideRepo
	activityRepo repository.ActivityRepo
}

func NewDashboardService(shadeRepo repository.ShadeRepo, alertRepo repository.AlertRepo, overrideRepo repository.OverrideRepo, activityRepo repository.ActivityRepo) *DashboardService {
	return &DashboardService{
		shadeRepo:    shadeRepo,
		alertRepo:    alertRepo,
		overrideRepo: overrideRepo,
		activityRepo: activityRepo,
	}
}

var _ Dashboard = (*DashboardService)(nil)

// Metrics returns the headline counts: active devices, open alerts, active
// manual overrides.
func (s *DashboardService) Metrics(ctx context.Context) ([]Metric, error) {
	activeShades, err := s.shadeRepo.CountByStatus(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}
	openAlerts, err := s.alertRepo.CountOpen(ctx)
	if err != nil {
		return nil, err
	}
	activeOverrides, err := s.overrideRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	return []Metric{
		{Title: "Active Shades", Value: activeShades, Color: "gray", Icon: "Shield"},
		{Title: "Active Alerts", Value: openAlerts, Color: "red", Icon: "AlertTriangle"},
		{Title: "Manual Overrides", Value: activeOverrides, Color: "gray", Icon: "Settings"},
	}, nil
}

func (s *DashboardService) Activities(ctx context.Context, f ActivityFilter) ([]models.ActivityEntry, error) {
	return s.activityRepo.List(ctx, f.Type, f.UserID, f.Limit)
}

func (s *DashboardService) OpenAlerts(ctx context.Context) ([]models.Alert, error) {
	return s.alertRepo.ListOpen(ctx)
}
