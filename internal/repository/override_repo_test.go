package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"shade_control/internal/models"
	"shade_control/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestOverrideSQLite_Append_EndsOpenOverrideInSameTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {

		}
	}(db)

	repo := repository.NewOverrideSQLite(db)

	o := models.ManualOverride{
		ShadeID:  1,
		UserID:   3,
		Type:     models.OverridePartial,
		Position: 45,
		Reason:   "glare on monitors",
		// CreatedAt zero: set to now
	}

	isUTCRecent := sqlmockArgumentFunc(func(v driver.Value) bool {
		tm, ok := v.(time.Time)
		if !ok {
			return false
		}
		if tm.Location() != time.UTC {
			return false
		}
		now := time.Now().UTC()
		return !tm.Before(now.Add(-5*time.Second)) && !tm.After(now.Add(5*time.Second))
	})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE manual_overrides SET ended_at = ?")).
		WithArgs(isUTCRecent, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO manual_overrides")).
		WithArgs(1, 3, models.OverridePartial, 45, "glare on monitors", isUTCRecent).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	id, err := repo.Append(context.Background(), o)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id != 12 {
		t.Fatalf("Append() id = %d, want 12", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOverrideSQLite_Append_InsertErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {

		}
	}(db)

	repo := repository.NewOverrideSQLite(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE manual_overrides SET ended_at = ?")).
		WithArgs(sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO manual_overrides")).
		WithArgs(1, nil, models.OverrideOpen, 100, nil, sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = repo.Append(context.Background(), models.ManualOverride{
		ShadeID:  1,
		Type:     models.OverrideOpen,
		Position: 100,
		// UserID and Reason unset: stored as NULL
	})
	if err == nil {
		t.Fatalf("Append() expected error, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOverrideSQLite_CountActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {

		}
	}(db)

	repo := repository.NewOverrideSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM manual_overrides WHERE ended_at IS NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountActive(context.Background())
	if err != nil {
		t.Fatalf("CountActive() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("CountActive() = %d, want 3", n)
	}
}
