package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"shade_control/internal/models"
)

// ---- Test doubles ----
//
// schedStore is a small in-memory stand-in for the schedule/shade/activity
// repositories, sharing one lock so the engine's loop goroutine can be
// observed safely from the test.

type memSchedule struct {
	id           int
	shadeID      int
	name         string
	day          string // weekday name or "daily"
	start        string // "HH:MM"
	target       int
	createdBy    int
	active       bool
	lastExecuted string // "YYYY-MM-DD", "" if never
}

type memShade struct {
	id      int
	name    string
	status  string
	current int
	target  int
}

type schedStore struct {
	mu        sync.Mutex
	schedules []*memSchedule
	shades    map[int]*memShade
	overrides map[int]time.Time // shadeID -> most recent override

	dueErr    error
	markErr   map[int]error // scheduleID -> error
	setPosErr map[int]error // shadeID -> error

	dueCalls    int
	setPosCalls int
	appends     []models.ActivityEntry

	createdSchedules []models.Schedule
	createdOverrides []models.ManualOverride
}

func newSchedStore() *schedStore {
	return &schedStore{
		shades:    make(map[int]*memShade),
		overrides: make(map[int]time.Time),
		markErr:   make(map[int]error),
		setPosErr: make(map[int]error),
	}
}

func (st *schedStore) dueCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.dueCalls
}

// stubScheduleRepo implements repository.ScheduleRepo over schedStore,
// mirroring the SQL due query's filter semantics.
type stubScheduleRepo struct{ st *schedStore }

func (r *stubScheduleRepo) Due(_ context.Context, weekday, hhmm, date string) ([]models.DueSchedule, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.dueCalls++
	if st.dueErr != nil {
		return nil, st.dueErr
	}

	var out []models.DueSchedule
	for _, s := range st.schedules {
		if !s.active || (s.day != weekday && s.day != "daily") || s.start != hhmm || s.lastExecuted == date {
			continue
		}
		sh := st.shades[s.shadeID]
		if sh == nil || sh.status != models.StatusActive {
			continue
		}
		d := models.DueSchedule{
			ScheduleID:      s.id,
			ShadeID:         s.shadeID,
			Name:            s.name,
			TargetPosition:  s.target,
			CreatedBy:       s.createdBy,
			DeviceName:      sh.name,
			CurrentPosition: sh.current,
		}
		if ts, ok := st.overrides[s.shadeID]; ok {
			t := ts
			d.LastOverride = &t
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *stubScheduleRepo) MarkExecuted(_ context.Context, scheduleID int, date string) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.markErr[scheduleID]; err != nil {
		return err
	}
	for _, s := range st.schedules {
		if s.id == scheduleID && s.lastExecuted != date {
			s.lastExecuted = date
		}
	}
	return nil
}

func (r *stubScheduleRepo) ListByShade(context.Context, int) ([]models.Schedule, error) {
	return nil, nil
}

func (r *stubScheduleRepo) Create(_ context.Context, s models.Schedule) (int, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.createdSchedules = append(st.createdSchedules, s)
	return len(st.createdSchedules), nil
}

func (r *stubScheduleRepo) SetActive(context.Context, int, bool) error { return nil }
func (r *stubScheduleRepo) Delete(context.Context, int) error          { return nil }

// stubShadeRepo implements repository.ShadeRepo over schedStore.
type stubShadeRepo struct{ st *schedStore }

func (r *stubShadeRepo) SetPosition(_ context.Context, shadeID, current, target int) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.setPosCalls++
	if err := st.setPosErr[shadeID]; err != nil {
		return err
	}
	if sh, ok := st.shades[shadeID]; ok {
		sh.current = current
		sh.target = target
	}
	return nil
}

func (r *stubShadeRepo) GetByID(_ context.Context, id int) (*models.Shade, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	sh, ok := st.shades[id]
	if !ok {
		return nil, nil
	}
	return &models.Shade{
		ID:              sh.id,
		Description:     sh.name,
		Status:          sh.status,
		CurrentPosition: sh.current,
		TargetPosition:  sh.target,
	}, nil
}

func (r *stubShadeRepo) List(context.Context) ([]models.Shade, error)            { return nil, nil }
func (r *stubShadeRepo) ListByArea(context.Context, int) ([]models.Shade, error) { return nil, nil }
func (r *stubShadeRepo) Create(context.Context, models.Shade) (int, error)       { return 0, nil }
func (r *stubShadeRepo) CountByStatus(context.Context, string) (int, error)      { return 0, nil }

// stubOverrideRepo implements repository.OverrideRepo over schedStore.
type stubOverrideRepo struct{ st *schedStore }

func (r *stubOverrideRepo) Append(_ context.Context, o models.ManualOverride) (int, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.createdOverrides = append(st.createdOverrides, o)
	st.overrides[o.ShadeID] = time.Now()
	return len(st.createdOverrides), nil
}

func (r *stubOverrideRepo) ListActive(context.Context) ([]models.ManualOverride, error) {
	return nil, nil
}
func (r *stubOverrideRepo) CountActive(context.Context) (int, error) { return 0, nil }

// stubActivityRepo implements repository.ActivityRepo over schedStore.
type stubActivityRepo struct{ st *schedStore }

func (r *stubActivityRepo) Append(_ context.Context, e models.ActivityEntry) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	st.appends = append(st.appends, e)
	return nil
}

func (r *stubActivityRepo) List(context.Context, string, int, int) ([]models.ActivityEntry, error) {
	return nil, nil
}

// newTestEngine builds an engine over the store with a fixed clock.
func newTestEngine(st *schedStore, at time.Time) *SchedulerService {
	svc := NewSchedulerService(&stubScheduleRepo{st}, &stubShadeRepo{st}, &stubActivityRepo{st}, nil)
	svc.now = func() time.Time { return at }
	return svc
}

// Monday 2025-10-06 08:00 local.
func mondayAt(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(2025, 10, 6, t.Hour(), t.Minute(), 0, 0, time.Local)
}

// ---- Tick behavior ----

func TestRunTick_ExecutesDueScheduleOncePerDay(t *testing.T) {
	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "South window", status: models.StatusActive, current: 30, target: 30}
	st.schedules = append(st.schedules, &memSchedule{
		id: 10, shadeID: 1, name: "Morning Open", day: "daily", start: "08:00",
		target: 80, createdBy: 2, active: true,
	})

	svc := newTestEngine(st, mondayAt("08:00"))

	if _, err := svc.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}

	if st.shades[1].current != 80 || st.shades[1].target != 80 {
		t.Fatalf("shade position: got current=%d target=%d, want 80/80", st.shades[1].current, st.shades[1].target)
	}
	if st.schedules[0].lastExecuted != "2025-10-06" {
		t.Fatalf("lastExecuted: got %q, want 2025-10-06", st.schedules[0].lastExecuted)
	}
	if len(st.appends) != 1 {
		t.Fatalf("activity entries: got %d, want 1", len(st.appends))
	}
	if !strings.Contains(st.appends[0].Description, "executed") {
		t.Fatalf("activity entry should say executed, got %q", st.appends[0].Description)
	}
	if st.appends[0].Type != models.ActivitySchedule {
		t.Fatalf("activity type: got %q, want %q", st.appends[0].Type, models.ActivitySchedule)
	}
	if st.appends[0].UserID != 2 {
		t.Fatalf("activity user: got %d, want schedule creator 2", st.appends[0].UserID)
	}

	// Second tick in the same minute: already stamped, due set empty.
	if _, err := svc.RunNow(context.Background()); err != nil {
		t.Fatalf("second RunNow() error: %v", err)
	}
	if st.setPosCalls != 1 {
		t.Fatalf("position writes: got %d, want exactly 1", st.setPosCalls)
	}
	if len(st.appends) != 1 {
		t.Fatalf("activity entries after re-run: got %d, want still 1", len(st.appends))
	}

	// A tick in a later minute no longer matches start_time.
	svc.now = func() time.Time { return mondayAt("08:01") }
	if _, err := svc.RunNow(context.Background()); err != nil {
		t.Fatalf("08:01 RunNow() error: %v", err)
	}
	if st.setPosCalls != 1 || len(st.appends) != 1 {
		t.Fatalf("no state change expected at 08:01: writes=%d entries=%d", st.setPosCalls, len(st.appends))
	}
}

func TestRunTick_ExactMinuteMatchOnly(t *testing.T) {
	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "w", status: models.StatusActive}
	st.schedules = append(st.schedules, &memSchedule{
		id: 10, shadeID: 1, name: "s", day: "daily", start: "08:00", target: 50, active: true,
	})

	// Tick lands one minute late: the schedule does not retro-fire.
	svc := newTestEngine(st, mondayAt("08:01"))
	if _, err := svc.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}
	if st.setPosCalls != 0 || st.schedules[0].lastExecuted != "" {
		t.Fatalf("late tick must not fire: writes=%d stamped=%q", st.setPosCalls, st.schedules[0].lastExecuted)
	}
}

func TestRunTick_WeekdayRule(t *testing.T) {
	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "w", status: models.StatusActive}
	st.schedules = append(st.schedules,
		&memSchedule{id: 10, shadeID: 1, name: "mon", day: "monday", start: "08:00", target: 50, active: true},
		&memSchedule{id: 11, shadeID: 1, name: "tue", day: "tuesday", start: "08:00", target: 60, active: true},
	)

	svc := newTestEngine(st, mondayAt("08:00"))
	if _, err := svc.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}

	if st.schedules[0].lastExecuted == "" {
		t.Fatalf("monday schedule should have fired")
	}
	if st.schedules[1].lastExecuted != "" {
		t.Fatalf("tuesday schedule must not fire on monday")
	}
}

func TestRunTick_InactiveDeviceAndScheduleExcluded(t *testing.T) {
	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "w1", status: models.StatusUnderMaintenance}
	st.shades[2] = &memShade{id: 2, name: "w2", status: models.StatusActive}
	st.schedules = append(st.schedules,
		&memSchedule{id: 10, shadeID: 1, name: "on broken device", day: "daily", start: "08:00", target: 50, active: true},
		&memSchedule{id: 11, shadeID: 2, name: "deactivated", day: "daily", start: "08:00", target: 50, active: false},
	)

	svc := newTestEngine(st, mondayAt("08:00"))
	if _, err := svc.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}
	if st.setPosCalls != 0 {
		t.Fatalf("nothing should execute, got %d writes", st.setPosCalls)
	}
}

// ---- Arbitration ----

func TestRunTick_OverrideConflictSuppression(t *testing.T) {
	cases := []struct {
		name        string
		overrideAge time.Duration
		wantExecute bool
	}{
		{"inside window", 10 * time.Minute, false},
		{"outside window", 40 * time.Minute, true},
		{"exactly at window boundary", 30 * time.Minute, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := mondayAt("08:00")

			st := newSchedStore()
			st.shades[1] = &memShade{id: 1, name: "South window", status: models.StatusActive, current: 55, target: 55}
			st.schedules = append(st.schedules, &memSchedule{
				id: 10, shadeID: 1, name: "Morning Open", day: "daily", start: "08:00",
				target: 80, createdBy: 2, active: true,
			})
			st.overrides[1] = now.Add(-tc.overrideAge)

			svc := newTestEngine(st, now) // default window: 30 minutes
			if _, err := svc.RunNow(context.Background()); err != nil {
				t.Fatalf("RunNow() error: %v", err)
			}

			// Stamped in both branches: no re-attempt later the same day.
			if st.schedules[0].lastExecuted != "2025-10-06" {
				t.Fatalf("lastExecuted: got %q, want stamped regardless of outcome", st.schedules[0].lastExecuted)
			}
			if len(st.appends) != 1 {
				t.Fatalf("activity entries: got %d, want 1", len(st.appends))
			}

			if tc.wantExecute {
				if st.shades[1].current != 80 {
					t.Fatalf("expected execution, shade position is %d", st.shades[1].current)
				}
				if !strings.Contains(st.appends[0].Description, "executed") {
					t.Fatalf("expected executed entry, got %q", st.appends[0].Description)
				}
			} else {
				if st.shades[1].current != 55 {
					t.Fatalf("conflict must leave position unchanged, got %d", st.shades[1].current)
				}
				if !strings.Contains(st.appends[0].Description, "skipped") {
					t.Fatalf("expected skipped entry, got %q", st.appends[0].Description)
				}
			}
		})
	}
}

func TestRunTick_ZeroWindowNeverConflicts(t *testing.T) {
	now := mondayAt("08:00")

	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "w", status: models.StatusActive}
	st.schedules = append(st.schedules, &memSchedule{
		id: 10, shadeID: 1, name: "s", day: "daily", start: "08:00", target: 80, active: true,
	})
	st.overrides[1] = now // override in the very same minute

	svc := newTestEngine(st, now)
	zero := 0
	if _, err := svc.UpdateSettings(SettingsPatch{OverrideWindowMinutes: &zero}); err != nil {
		t.Fatalf("UpdateSettings() error: %v", err)
	}
	if _, err := svc.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}
	if st.shades[1].current != 80 {
		t.Fatalf("window 0 disables suppression, position is %d", st.shades[1].current)
	}
}

// ---- Failure isolation ----

func TestRunTick_WriteFailureDoesNotBlockOtherSchedules(t *testing.T) {
	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "w1", status: models.StatusActive}
	st.shades[2] = &memShade{id: 2, name: "w2", status: models.StatusActive}
	st.schedules = append(st.schedules,
		&memSchedule{id: 10, shadeID: 1, name: "A", day: "daily", start: "08:00", target: 80, active: true},
		&memSchedule{id: 11, shadeID: 2, name: "B", day: "daily", start: "08:00", target: 20, active: true},
	)
	st.setPosErr[1] = errors.New("device store down")

	svc := newTestEngine(st, mondayAt("08:00"))
	if _, err := svc.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}

	// A failed before the stamp: still eligible for retry.
	if st.schedules[0].lastExecuted != "" {
		t.Fatalf("failed schedule must not be stamped, got %q", st.schedules[0].lastExecuted)
	}
	// B executed and was stamped.
	if st.shades[2].current != 20 || st.schedules[1].lastExecuted == "" {
		t.Fatalf("schedule B should have executed: pos=%d stamped=%q", st.shades[2].current, st.schedules[1].lastExecuted)
	}

	// Next tick, the store recovered: A is retried and succeeds.
	st.mu.Lock()
	delete(st.setPosErr, 1)
	st.mu.Unlock()
	if _, err := svc.RunNow(context.Background()); err != nil {
		t.Fatalf("retry RunNow() error: %v", err)
	}
	if st.shades[1].current != 80 || st.schedules[0].lastExecuted == "" {
		t.Fatalf("schedule A should execute on retry: pos=%d stamped=%q", st.shades[1].current, st.schedules[0].lastExecuted)
	}
}

func TestRunTick_DueQueryErrorAbortsTick(t *testing.T) {
	st := newSchedStore()
	st.dueErr = errors.New("db down")

	svc := newTestEngine(st, mondayAt("08:00"))
	if _, err := svc.RunNow(context.Background()); err == nil {
		t.Fatalf("expected due-query error to surface from RunNow")
	}
	if st.setPosCalls != 0 || len(st.appends) != 0 {
		t.Fatalf("aborted tick must not write: writes=%d entries=%d", st.setPosCalls, len(st.appends))
	}
}

func TestRunTick_PausedDoesNothing(t *testing.T) {
	st := newSchedStore()
	st.shades[1] = &memShade{id: 1, name: "w", status: models.StatusActive}
	st.schedules = append(st.schedules, &memSchedule{
		id: 10, shadeID: 1, name: "s", day: "daily", start: "08:00", target: 80, active: true,
	})

	svc := newTestEngine(st, mondayAt("08:00"))
	paused := true
	if _, err := svc.UpdateSettings(SettingsPatch{Paused: &paused}); err != nil {
		t.Fatalf("UpdateSettings() error: %v", err)
	}

	at, err := svc.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}
	if st.dueCount() != 0 {
		t.Fatalf("paused tick must not query the store")
	}
	// lastCheck still advances so status reflects the tick.
	if got := svc.Status().LastCheck; !got.Equal(at) {
		t.Fatalf("LastCheck: got %v, want %v", got, at)
	}
}

// ---- Settings ----

func TestUpdateSettings_Validation(t *testing.T) {
	svc := newTestEngine(newSchedStore(), mondayAt("08:00"))

	zero := 0
	neg := -1
	paused := true

	if _, err := svc.UpdateSettings(SettingsPatch{IntervalMinutes: &zero}); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("interval 0: got %v, want ErrInvalidInterval", err)
	}
	if _, err := svc.UpdateSettings(SettingsPatch{OverrideWindowMinutes: &neg}); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("window -1: got %v, want ErrInvalidWindow", err)
	}

	// Invalid input must not apply partially.
	if _, err := svc.UpdateSettings(SettingsPatch{IntervalMinutes: &zero, Paused: &paused}); err == nil {
		t.Fatalf("expected validation error")
	}
	got := svc.Status().Settings
	if got.Paused {
		t.Fatalf("rejected patch must not apply any field")
	}
	if got.IntervalMinutes != defaultIntervalMinutes || got.OverrideWindowMinutes != defaultOverrideWindowMinutes {
		t.Fatalf("defaults disturbed: %+v", got)
	}
}

func TestUpdateSettings_MergeAndIdempotence(t *testing.T) {
	svc := newTestEngine(newSchedStore(), mondayAt("08:00"))

	paused := true
	for i := 0; i < 2; i++ {
		got, err := svc.UpdateSettings(SettingsPatch{Paused: &paused})
		if err != nil {
			t.Fatalf("UpdateSettings() call %d error: %v", i+1, err)
		}
		if !got.Paused {
			t.Fatalf("paused should be true after call %d", i+1)
		}
	}

	// Other fields are untouched by a partial patch.
	got := svc.Status().Settings
	if got.IntervalMinutes != defaultIntervalMinutes || got.OverrideWindowMinutes != defaultOverrideWindowMinutes {
		t.Fatalf("partial patch disturbed other fields: %+v", got)
	}

	window := 45
	if got, err := svc.UpdateSettings(SettingsPatch{OverrideWindowMinutes: &window}); err != nil || got.OverrideWindowMinutes != 45 || !got.Paused {
		t.Fatalf("merge failed: got %+v err %v", got, err)
	}
}

// ---- Lifecycle ----

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestStartStop_IdempotentAndImmediateTick(t *testing.T) {
	st := newSchedStore()
	svc := newTestEngine(st, mondayAt("03:00"))

	svc.Start()
	svc.Start() // no-op while running

	if !svc.Status().Running {
		t.Fatalf("Status().Running should be true after Start")
	}
	// Start performs one immediate tick before arming the timer.
	waitFor(t, func() bool { return st.dueCount() == 1 }, "immediate tick")

	svc.Stop()
	svc.Stop() // no-op once stopped

	if svc.Status().Running {
		t.Fatalf("Status().Running should be false after Stop")
	}

	// No tick fires after Stop returns.
	before := st.dueCount()
	time.Sleep(50 * time.Millisecond)
	if got := st.dueCount(); got != before {
		t.Fatalf("tick fired after Stop: %d -> %d", before, got)
	}
}

func TestUpdateSettings_IntervalChangeRestartsTimer(t *testing.T) {
	st := newSchedStore()
	svc := newTestEngine(st, mondayAt("03:00"))

	svc.Start()
	waitFor(t, func() bool { return st.dueCount() == 1 }, "initial tick")

	five := 5
	got, err := svc.UpdateSettings(SettingsPatch{IntervalMinutes: &five})
	if err != nil {
		t.Fatalf("UpdateSettings() error: %v", err)
	}
	if got.IntervalMinutes != 5 {
		t.Fatalf("IntervalMinutes: got %d, want 5", got.IntervalMinutes)
	}

	// The restarted loop ticks immediately, matching start-up behavior.
	waitFor(t, func() bool { return st.dueCount() == 2 }, "restart tick")
	if !svc.Status().Running {
		t.Fatalf("engine should still be running after interval change")
	}

	// An unchanged interval does not restart the loop.
	if _, err := svc.UpdateSettings(SettingsPatch{IntervalMinutes: &five}); err != nil {
		t.Fatalf("UpdateSettings() error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if st.dueCount() != 2 {
		t.Fatalf("same-interval patch must not re-tick, got %d ticks", st.dueCount())
	}

	svc.Stop()
}
