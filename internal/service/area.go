package service

import (
	"context"
	"errors"

	"shade_control/internal/models"
	"shade_control/internal/repository"
)

var errInvalidArea = errors.New("building_number, floor and room are required")

type AreaService struct {
	areaRepo repository.AreaRepo
}

func NewAreaService(areaRepo repository.AreaRepo) *AreaService {
	return &AreaService{areaRepo: areaRepo}
}

var _ Areas = (*AreaService)(nil)

// ListGrouped returns all areas grouped by building and floor, the shape the
// dashboard map view consumes.
func (s *AreaService) ListGrouped(ctx context.Context) (map[string]Building, error) {
	areas, err := s.areaRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	buildings := make(map[string]Building)
	for _, a := range areas {
		b, ok := buildings[a.BuildingNumber]
		if !ok {
			b = Building{
				BuildingNumber: a.BuildingNumber,
				Floors:         make(map[int][]models.Area),
			}
		}
		b.Floors[a.Floor] = append(b.Floors[a.Floor], a)
		buildings[a.BuildingNumber] = b
	}
	return buildings, nil
}

func (s *AreaService) Create(ctx context.Context, p CreateAreaParams) (int, error) {
	if p.BuildingNumber == "" || p.Room == "" || p.Floor < 0 {
		return 0, errInvalidArea
	}
	return s.areaRepo.Create(ctx, models.Area{
		BuildingNumber: p.BuildingNumber,
		Floor:          p.Floor,
		Room:           p.Room,
		RoomNumber:     p.RoomNumber,
		Description:    p.Description,
	})
}
