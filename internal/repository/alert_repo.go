package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shade_control/internal/models"
)

type AlertSQLite struct {
	db *sql.DB
}

func NewAlertSQLite(db *sql.DB) *AlertSQLite { return &AlertSQLite{db: db} }

var _ AlertRepo = (*AlertSQLite)(nil)

const (
	alertColumns = `id, description, location, priority, status, COALESCE(created_by_user_id, 0), COALESCE(assigned_to_user_id, 0), created_at`

	insertAlertSQL = `
		INSERT INTO alerts (description, location, priority, status, created_by_user_id, assigned_to_user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	listAlertsSQL = `SELECT ` + alertColumns + ` FROM alerts ORDER BY created_at DESC`

	listOpenAlertsSQL = `
		SELECT ` + alertColumns + ` FROM alerts
		WHERE status IN ('active', 'acknowledged')
		ORDER BY status, priority DESC, created_at DESC
	`

	setAlertStatusSQL = `UPDATE alerts SET status = ? WHERE id = ?`

	countOpenAlertsSQL = `SELECT COUNT(*) FROM alerts WHERE status IN ('active', 'acknowledged')`
)

func (r *AlertSQLite) Create(ctx context.Context, a models.Alert) (int, error) {
	status := a.Status
	if status == "" {
		status = models.AlertActive
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	} else {
		createdAt = createdAt.UTC()
	}

	res, err := r.db.ExecContext(ctx, insertAlertSQL,
		a.Description,
		a.Location,
		a.Priority,
		status,
		nullIfZero(a.CreatedBy),
		nullIfZero(a.AssignedTo),
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert alert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get alert insert id: %w", err)
	}
	return int(id), nil
}

func (r *AlertSQLite) List(ctx context.Context) ([]models.Alert, error) {
	return r.queryAlerts(ctx, listAlertsSQL)
}

func (r *AlertSQLite) ListOpen(ctx context.Context) ([]models.Alert, error) {
	return r.queryAlerts(ctx, listOpenAlertsSQL)
}

func (r *AlertSQLite) SetStatus(ctx context.Context, id int, status string) error {
	res, err := r.db.ExecContext(ctx, setAlertStatusSQL, status, id)
	if err != nil {
		return fmt.Errorf("set alert %d status %q: %w", id, status, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set alert %d status rows affected: %w", id, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *AlertSQLite) CountOpen(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countOpenAlertsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count open alerts: %w", err)
	}
	return n, nil
}

func (r *AlertSQLite) queryAlerts(ctx context.Context, q string) ([]models.Alert, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.Description, &a.Location, &a.Priority, &a.Status, &a.CreatedBy, &a.AssignedTo, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
