package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shade_control/internal/models"
)

type ScheduleSQLite struct {
	db *sql.DB
}

func NewScheduleSQLite(db *sql.DB) *ScheduleSQLite { return &ScheduleSQLite{db: db} }

var _ ScheduleRepo = (*ScheduleSQLite)(nil)

const (
	dueSchedulesSQL = `
		SELECT
			s.id,
			s.shade_id,
			s.name,
			s.target_position,
			COALESCE(s.created_by_user_id, 0),
			sh.description,
			sh.current_position,
			(SELECT MAX(created_at) FROM manual_overrides WHERE shade_id = sh.id) AS last_override
		FROM schedules s
		JOIN shades sh ON s.shade_id = sh.id
		WHERE s.is_active = TRUE
		AND (s.day_of_week = ? OR s.day_of_week = 'daily')
		AND s.start_time = ?
		AND (s.last_executed_date IS NULL OR s.last_executed_date != ?)
		AND sh.status = 'active'
	`

	// Conditional stamp: a second writer racing on the same day matches zero
	// rows, preserving the at-most-once-per-day guarantee.
	markExecutedSQL = `
		UPDATE schedules SET last_executed_date = ?
		WHERE id = ? AND (last_executed_date IS NULL OR last_executed_date != ?)
	`

	listSchedulesByShadeSQL = `
		SELECT id, shade_id, name, day_of_week, start_time, COALESCE(end_time, ''),
			target_position, is_active, COALESCE(last_executed_date, ''),
			COALESCE(created_by_user_id, 0), created_at
		FROM schedules WHERE shade_id = ?
		ORDER BY day_of_week, start_time
	`

	insertScheduleSQL = `
		INSERT INTO schedules (shade_id, name, day_of_week, start_time, end_time,
			target_position, is_active, created_by_user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	setScheduleActiveSQL = `UPDATE schedules SET is_active = ? WHERE id = ?`
	deleteScheduleSQL    = `DELETE FROM schedules WHERE id = ?`
)

// Due returns the set of schedules that fire in the tick containing hhmm on
// the given weekday, excluding schedules already executed on date and devices
// that are not active.
func (r *ScheduleSQLite) Due(ctx context.Context, weekday, hhmm, date string) ([]models.DueSchedule, error) {
	rows, err := r.db.QueryContext(ctx, dueSchedulesSQL, weekday, hhmm, date)
	if err != nil {
		return nil, fmt.Errorf("query due schedules: %w", err)
	}
	defer rows.Close()

	var out []models.DueSchedule
	for rows.Next() {
		var d models.DueSchedule
		var lastOverride sql.NullTime
		if err := rows.Scan(
			&d.ScheduleID,
			&d.ShadeID,
			&d.Name,
			&d.TargetPosition,
			&d.CreatedBy,
			&d.DeviceName,
			&d.CurrentPosition,
			&lastOverride,
		); err != nil {
			return nil, fmt.Errorf("scan due schedule: %w", err)
		}
		if lastOverride.Valid {
			ts := lastOverride.Time.UTC()
			d.LastOverride = &ts
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ScheduleSQLite) MarkExecuted(ctx context.Context, scheduleID int, date string) error {
	if _, err := r.db.ExecContext(ctx, markExecutedSQL, date, scheduleID, date); err != nil {
		return fmt.Errorf("mark schedule %d executed: %w", scheduleID, err)
	}
	return nil
}

func (r *ScheduleSQLite) ListByShade(ctx context.Context, shadeID int) ([]models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, listSchedulesByShadeSQL, shadeID)
	if err != nil {
		return nil, fmt.Errorf("list schedules for shade %d: %w", shadeID, err)
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(
			&s.ID,
			&s.ShadeID,
			&s.Name,
			&s.DayOfWeek,
			&s.StartTime,
			&s.EndTime,
			&s.TargetPosition,
			&s.IsActive,
			&s.LastExecuted,
			&s.CreatedBy,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ScheduleSQLite) Create(ctx context.Context, s models.Schedule) (int, error) {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	} else {
		createdAt = createdAt.UTC()
	}

	res, err := r.db.ExecContext(ctx, insertScheduleSQL,
		s.ShadeID,
		s.Name,
		s.DayOfWeek,
		s.StartTime,
		nullIfEmpty(s.EndTime),
		s.TargetPosition,
		s.IsActive,
		nullIfZero(s.CreatedBy),
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert schedule %q: %w", s.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get schedule insert id: %w", err)
	}
	return int(id), nil
}

func (r *ScheduleSQLite) SetActive(ctx context.Context, id int, active bool) error {
	if _, err := r.db.ExecContext(ctx, setScheduleActiveSQL, active, id); err != nil {
		return fmt.Errorf("set schedule %d active=%v: %w", id, active, err)
	}
	return nil
}

func (r *ScheduleSQLite) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteScheduleSQL, id)
	if err != nil {
		return fmt.Errorf("delete schedule %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete schedule %d rows affected: %w", id, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// helpers shared by the SQLite repos

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
