package service

import (
	"context"
	"errors"
	"testing"

	"shade_control/internal/models"
)

func newScheduleServiceForTest(st *schedStore) *ScheduleService {
	return NewScheduleService(&stubScheduleRepo{st}, &stubShadeRepo{st}, &stubActivityRepo{st})
}

func TestScheduleService_Create_Validation(t *testing.T) {
	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "South window", status: models.StatusActive}
	svc := newScheduleServiceForTest(st)

	valid := CreateScheduleParams{
		ShadeID:        1,
		Name:           "Morning Open",
		DayOfWeek:      "Monday",
		StartTime:      "08:00",
		TargetPosition: 80,
		CreatedBy:      2,
	}

	cases := []struct {
		name    string
		mutate  func(*CreateScheduleParams)
		wantErr error
	}{
		{"blank name", func(p *CreateScheduleParams) { p.Name = "  " }, errInvalidScheduleName},
		{"bad day", func(p *CreateScheduleParams) { p.DayOfWeek = "someday" }, errInvalidDayOfWeek},
		{"bad time", func(p *CreateScheduleParams) { p.StartTime = "25:99" }, errInvalidStartTime},
		{"bad end time", func(p *CreateScheduleParams) { p.EndTime = "nope" }, errInvalidStartTime},
		{"position above range", func(p *CreateScheduleParams) { p.TargetPosition = 101 }, errInvalidPosition},
		{"position below range", func(p *CreateScheduleParams) { p.TargetPosition = -1 }, errInvalidPosition},
		{"missing shade", func(p *CreateScheduleParams) { p.ShadeID = 99 }, ErrShadeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			if _, err := svc.Create(context.Background(), p); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	if len(st.createdSchedules) != 0 {
		t.Fatalf("no schedule should have been stored, got %d", len(st.createdSchedules))
	}
}

func TestScheduleService_Create_NormalizesDayAndTime(t *testing.T) {
	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "South window", status: models.StatusActive}
	svc := newScheduleServiceForTest(st)

	id, err := svc.Create(context.Background(), CreateScheduleParams{
		ShadeID:        1,
		Name:           "Morning Open",
		DayOfWeek:      " DAILY ",
		StartTime:      "8:00",
		TargetPosition: 80,
		CreatedBy:      2,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == 0 {
		t.Fatalf("Create() returned zero id")
	}

	got := st.createdSchedules[0]
	if got.DayOfWeek != "daily" {
		t.Fatalf("DayOfWeek = %q, want normalized %q", got.DayOfWeek, "daily")
	}
	if got.StartTime != "08:00" {
		t.Fatalf("StartTime = %q, want normalized %q", got.StartTime, "08:00")
	}
	if !got.IsActive {
		t.Fatalf("new schedules must be active by default")
	}

	if len(st.appends) != 1 || st.appends[0].Type != models.ActivitySchedule {
		t.Fatalf("expected one schedule activity entry, got %+v", st.appends)
	}
}

func TestScheduleService_Create_AcceptsSecondsResolutionInput(t *testing.T) {
	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "w", status: models.StatusActive}
	svc := newScheduleServiceForTest(st)

	if _, err := svc.Create(context.Background(), CreateScheduleParams{
		ShadeID:        1,
		Name:           "Night Close",
		DayOfWeek:      "daily",
		StartTime:      "22:00:00",
		TargetPosition: 0,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := st.createdSchedules[0].StartTime; got != "22:00" {
		t.Fatalf("StartTime = %q, want truncated to minute %q", got, "22:00")
	}
}
