package repository

import (
	"context"
	"database/sql"
	"fmt"

	"shade_control/internal/models"
)

type AreaSQLite struct {
	db *sql.DB
}

func NewAreaSQLite(db *sql.DB) *AreaSQLite { return &AreaSQLite{db: db} }

var _ AreaRepo = (*AreaSQLite)(nil)

const (
	listAreasSQL = `
		SELECT id, building_number, floor, room, COALESCE(room_number, ''), COALESCE(description, '')
		FROM areas
		ORDER BY building_number, floor, room
	`

	insertAreaSQL = `
		INSERT INTO areas (building_number, floor, room, room_number, description)
		VALUES (?, ?, ?, ?, ?)
	`
)

func (r *AreaSQLite) List(ctx context.Context) ([]models.Area, error) {
	rows, err := r.db.QueryContext(ctx, listAreasSQL)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	var out []models.Area
	for rows.Next() {
		var a models.Area
		if err := rows.Scan(&a.ID, &a.BuildingNumber, &a.Floor, &a.Room, &a.RoomNumber, &a.Description); err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AreaSQLite) Create(ctx context.Context, a models.Area) (int, error) {
	res, err := r.db.ExecContext(ctx, insertAreaSQL,
		a.BuildingNumber,
		a.Floor,
		a.Room,
		nullIfEmpty(a.RoomNumber),
		nullIfEmpty(a.Description),
	)
	if err != nil {
		return 0, fmt.Errorf("insert area %q/%d/%q: %w", a.BuildingNumber, a.Floor, a.Room, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get area insert id: %w", err)
	}
	return int(id), nil
}
