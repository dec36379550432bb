package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"shade_control/internal/models"
	"shade_control/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestShadeSQLite_GetByID_MissingShadeReturnsNilNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {

		}
	}(db)

	repo := repository.NewShadeSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM shades WHERE id = ?")).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID() = %+v, want nil for missing shade", got)
	}
}

func TestShadeSQLite_GetByID_ScansRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {

		}
	}(db)

	repo := repository.NewShadeSQLite(db)

	cols := []string{"id", "area_id", "description", "type", "current_position", "target_position", "status", "installed_by"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM shades WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 4, "South window", "roller", 30, 80, models.StatusActive, 2))

	got, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil || got.ID != 1 || got.AreaID != 4 || got.Description != "South window" ||
		got.CurrentPosition != 30 || got.TargetPosition != 80 || got.Status != models.StatusActive {
		t.Fatalf("GetByID() unexpected shade: %+v", got)
	}
}

func TestShadeSQLite_SetPosition_WritesBothColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {

		}
	}(db)

	repo := repository.NewShadeSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shades SET current_position = ?, target_position = ?")).
		WithArgs(80, 80, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetPosition(context.Background(), 1, 80, 80); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShadeSQLite_SetPosition_MissingShadeReturnsErrNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {

		}
	}(db)

	repo := repository.NewShadeSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shades SET current_position = ?, target_position = ?")).
		WithArgs(0, 0, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SetPosition(context.Background(), 99, 0, 0)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("SetPosition() error = %v, want sql.ErrNoRows", err)
	}
}

func TestShadeSQLite_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {

		}
	}(db)

	repo := repository.NewShadeSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM shades WHERE status = ?")).
		WithArgs(models.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountByStatus(context.Background(), models.StatusActive)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if n != 7 {
		t.Fatalf("CountByStatus() = %d, want 7", n)
	}
}
