package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shade_control/internal/models"

	"github.com/google/uuid"
)

type ActivitySQLite struct {
	db *sql.DB
}

func NewActivitySQLite(db *sql.DB) *ActivitySQLite { return &ActivitySQLite{db: db} }

var _ ActivityRepo = (*ActivitySQLite)(nil)

const defaultActivityLimit = 10

const maxActivityLimit = 50

// Append inserts a new audit entry. If ID or CreatedAt are empty, they're set.
func (r *ActivitySQLite) Append(ctx context.Context, e models.ActivityEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	} else {
		e.CreatedAt = e.CreatedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, type, description, user_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		e.ID,
		strings.ToLower(strings.TrimSpace(e.Type)),
		e.Description,
		nullIfZero(e.UserID),
		e.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}
	return nil
}

// List returns recent entries, newest first, optionally filtered by type
// and/or user. Limit is clamped to [1, 50]; zero means the default of 10.
func (r *ActivitySQLite) List(ctx context.Context, typ string, userID, limit int) ([]models.ActivityEntry, error) {
	var (
		conds []string
		args  []any
	)

	if typ = strings.ToLower(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}
	if userID > 0 {
		conds = append(conds, "user_id = ?")
		args = append(args, userID)
	}

	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	q := `SELECT id, type, description, COALESCE(user_id, 0), created_at FROM activity_log`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity entries: %w", err)
	}
	defer rows.Close()

	out := make([]models.ActivityEntry, 0, limit)
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Description, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
