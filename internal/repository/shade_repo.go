package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shade_control/internal/models"
)

type ShadeSQLite struct {
	db *sql.DB
}

func NewShadeSQLite(db *sql.DB) *ShadeSQLite { return &ShadeSQLite{db: db} }

var _ ShadeRepo = (*ShadeSQLite)(nil)

const (
	shadeColumns = `id, area_id, description, type, current_position, target_position, status, COALESCE(installed_by_user_id, 0)`

	listShadesSQL       = `SELECT ` + shadeColumns + ` FROM shades ORDER BY area_id, description`
	listShadesByAreaSQL = `SELECT ` + shadeColumns + ` FROM shades WHERE area_id = ? ORDER BY description`
	selectShadeSQL      = `SELECT ` + shadeColumns + ` FROM shades WHERE id = ?`

	insertShadeSQL = `
		INSERT INTO shades (area_id, description, type, current_position, target_position, status, installed_by_user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	setShadePositionSQL = `UPDATE shades SET current_position = ?, target_position = ? WHERE id = ?`

	countShadesByStatusSQL = `SELECT COUNT(*) FROM shades WHERE status = ?`
)

func (r *ShadeSQLite) List(ctx context.Context) ([]models.Shade, error) {
	return r.queryShades(ctx, listShadesSQL)
}

func (r *ShadeSQLite) ListByArea(ctx context.Context, areaID int) ([]models.Shade, error) {
	return r.queryShades(ctx, listShadesByAreaSQL, areaID)
}

// GetByID returns (nil, nil) if the shade does not exist.
func (r *ShadeSQLite) GetByID(ctx context.Context, id int) (*models.Shade, error) {
	var s models.Shade
	err := r.db.QueryRowContext(ctx, selectShadeSQL, id).Scan(
		&s.ID, &s.AreaID, &s.Description, &s.Type,
		&s.CurrentPosition, &s.TargetPosition, &s.Status, &s.InstalledBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select shade %d: %w", id, err)
	}
	return &s, nil
}

func (r *ShadeSQLite) Create(ctx context.Context, s models.Shade) (int, error) {
	status := s.Status
	if status == "" {
		status = models.StatusActive
	}
	res, err := r.db.ExecContext(ctx, insertShadeSQL,
		s.AreaID,
		s.Description,
		s.Type,
		s.CurrentPosition,
		s.TargetPosition,
		status,
		nullIfZero(s.InstalledBy),
	)
	if err != nil {
		return 0, fmt.Errorf("insert shade %q: %w", s.Description, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get shade insert id: %w", err)
	}
	return int(id), nil
}

func (r *ShadeSQLite) SetPosition(ctx context.Context, shadeID, current, target int) error {
	res, err := r.db.ExecContext(ctx, setShadePositionSQL, current, target, shadeID)
	if err != nil {
		return fmt.Errorf("set shade %d position: %w", shadeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set shade %d position rows affected: %w", shadeID, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ShadeSQLite) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countShadesByStatusSQL, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count shades with status %q: %w", status, err)
	}
	return n, nil
}

func (r *ShadeSQLite) queryShades(ctx context.Context, q string, args ...any) ([]models.Shade, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query shades: %w", err)
	}
	defer rows.Close()

	var out []models.Shade
	for rows.Next() {
		var s models.Shade
		if err := rows.Scan(
			&s.ID, &s.AreaID, &s.Description, &s.Type,
			&s.CurrentPosition, &s.TargetPosition, &s.Status, &s.InstalledBy,
		); err != nil {
			return nil, fmt.Errorf("scan shade: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
