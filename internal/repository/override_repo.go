package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shade_control/internal/models"
)

type OverrideSQLite struct {
	db *sql.DB
}

func NewOverrideSQLite(db *sql.DB) *OverrideSQLite { return &OverrideSQLite{db: db} }

var _ OverrideRepo = (*OverrideSQLite)(nil)

const (
	endOpenOverrideSQL = `
		UPDATE manual_overrides SET ended_at = ?
		WHERE shade_id = ? AND ended_at IS NULL
	`

	insertOverrideSQL = `
		INSERT INTO manual_overrides (shade_id, user_id, override_type, position, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	listActiveOverridesSQL = `
		SELECT id, shade_id, COALESCE(user_id, 0), override_type, position, COALESCE(reason, ''), created_at
		FROM manual_overrides
		WHERE ended_at IS NULL
		ORDER BY created_at DESC
	`

	countActiveOverridesSQL = `SELECT COUNT(*) FROM manual_overrides WHERE ended_at IS NULL`
)

// Append closes any open override for the shade, then inserts the new one.
// Both statements run in one transaction so a reader never sees two open
// overrides for the same shade.
func (r *OverrideSQLite) Append(ctx context.Context, o models.ManualOverride) (int, error) {
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	} else {
		createdAt = createdAt.UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin override transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, endOpenOverrideSQL, createdAt, o.ShadeID); err != nil {
		return 0, fmt.Errorf("end open override for shade %d: %w", o.ShadeID, err)
	}

	res, err := tx.ExecContext(ctx, insertOverrideSQL,
		o.ShadeID,
		nullIfZero(o.UserID),
		o.Type,
		o.Position,
		nullIfEmpty(o.Reason),
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert override for shade %d: %w", o.ShadeID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get override insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit override transaction: %w", err)
	}
	return int(id), nil
}

func (r *OverrideSQLite) ListActive(ctx context.Context) ([]models.ManualOverride, error) {
	rows, err := r.db.QueryContext(ctx, listActiveOverridesSQL)
	if err != nil {
		return nil, fmt.Errorf("list active overrides: %w", err)
	}
	defer rows.Close()

	var out []models.ManualOverride
	for rows.Next() {
		var o models.ManualOverride
		if err := rows.Scan(&o.ID, &o.ShadeID, &o.UserID, &o.Type, &o.Position, &o.Reason, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		o.CreatedAt = o.CreatedAt.UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OverrideSQLite) CountActive(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countActiveOverridesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active overrides: %w", err)
	}
	return n, nil
}
