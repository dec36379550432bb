package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"shade_control/internal/logger"
	"shade_control/internal/models"
	"shade_control/internal/repository"
)

// Engine defaults, matching the original deployment tuning.
const (
	defaultIntervalMinutes       = 2
	defaultOverrideWindowMinutes = 30

	// Upper bound for one tick's queries and writes.
	tickTimeout = time.Minute
)

var (
	ErrInvalidInterval = errors.New("interval_minutes must be a positive integer")
	ErrInvalidWindow   = errors.New("override_window_minutes must not be negative")
)

// SchedulerSettings are the runtime-tunable engine parameters. Not persisted;
// defaults apply after a restart and unexecuted schedules are picked up on the
// next matching tick.
type SchedulerSettings struct {
	IntervalMinutes       int  `json:"interval_minutes"`
	OverrideWindowMinutes int  `json:"override_window_minutes"`
	Paused                bool `json:"paused"`
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	IntervalMinutes       *int  `json:"interval_minutes,omitempty"`
	OverrideWindowMinutes *int  `json:"override_window_minutes,omitempty"`
	Paused                *bool `json:"paused,omitempty"`
}

type SchedulerStatus struct {
	Running   bool              `json:"running"`
	LastCheck time.Time         `json:"last_check"`
	Settings  SchedulerSettings `json:"settings"`
}

// SchedulerService is the reconciliation engine. On a timer it computes the
// set of schedules due at the current minute, arbitrates each against recent
// manual overrides, applies or skips, and stamps schedules executed-for-today.
//
// Schedules fire only in the tick whose wall-clock minute equals their
// start_time; there is no catch-up for missed minutes, so the interval should
// not exceed the spacing between distinct schedule start times.
type SchedulerService struct {
	scheduleRepo repository.ScheduleRepo
	shadeRepo    repository.ShadeRepo
	activityRepo repository.ActivityRepo
	log          *logger.Logger
	now          func() time.Time

	mu        sync.Mutex
	settings  SchedulerSettings
	running   bool
	lastCheck time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewSchedulerService(scheduleRepo repository.ScheduleRepo, shadeRepo repository.ShadeRepo, activityRepo repository.ActivityRepo, log *logger.Logger) *SchedulerService {
	return &SchedulerService{
		scheduleRepo: scheduleRepo,
		shadeRepo:    shadeRepo,
		activityRepo: activityRepo,
		log:          log,
		now:          time.Now,
		settings: SchedulerSettings{
			IntervalMinutes:       defaultIntervalMinutes,
			OverrideWindowMinutes: defaultOverrideWindowMinutes,
		},
	}
}

var _ Scheduler = (*SchedulerService)(nil)

// Start arms the timer and runs one immediate tick. Idempotent: a second call
// while running is a no-op.
func (s *SchedulerService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	interval := time.Duration(s.settings.IntervalMinutes) * time.Minute
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stopCh = stop
	s.doneCh = done
	s.running = true
	s.mu.Unlock()

	if s.log != nil {
		s.log.Infow("scheduler_started", "interval_minutes", int(interval/time.Minute))
	}
	go s.loop(stop, done, interval)
}

// Stop disarms the timer. No tick fires after Stop returns; an in-flight tick
// is allowed to complete. Idempotent.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stop, done := s.stopCh, s.doneCh
	s.running = false
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	close(stop)
	<-done
	if s.log != nil {
		s.log.Infow("scheduler_stopped")
	}
}

func (s *SchedulerService) loop(stop <-chan struct{}, done chan<- struct{}, interval time.Duration) {
	defer close(done)

	// Run immediately on start, then on every tick.
	s.timedTick()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.timedTick()
		}
	}
}

func (s *SchedulerService) timedTick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	_, _ = s.runTick(ctx) // failures are logged inside; retried next tick
}

// RunNow triggers one out-of-band tick for operator diagnostics and returns
// the tick's timestamp.
func (s *SchedulerService) RunNow(ctx context.Context) (time.Time, error) {
	return s.runTick(ctx)
}

// Status reports whether the timer is armed, the last tick's timestamp and a
// snapshot of the live settings.
func (s *SchedulerService) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStatus{
		Running:   s.running,
		LastCheck: s.lastCheck,
		Settings:  s.settings,
	}
}

// UpdateSettings validates and merges a partial update into the live settings.
// Invalid input is rejected with no partial application. An interval change
// re-arms the timer; the restarted loop ticks immediately, same as start-up.
func (s *SchedulerService) UpdateSettings(p SettingsPatch) (SchedulerSettings, error) {
	if p.IntervalMinutes != nil && *p.IntervalMinutes <= 0 {
		return SchedulerSettings{}, ErrInvalidInterval
	}
	if p.OverrideWindowMinutes != nil && *p.OverrideWindowMinutes < 0 {
		return SchedulerSettings{}, ErrInvalidWindow
	}

	s.mu.Lock()
	prevInterval := s.settings.IntervalMinutes
	if p.IntervalMinutes != nil {
		s.settings.IntervalMinutes = *p.IntervalMinutes
	}
	if p.OverrideWindowMinutes != nil {
		s.settings.OverrideWindowMinutes = *p.OverrideWindowMinutes
	}
	if p.Paused != nil {
		s.settings.Paused = *p.Paused
	}
	snap := s.settings
	restart := s.running && snap.IntervalMinutes != prevInterval
	s.mu.Unlock()

	if restart {
		s.Stop()
		s.Start()
	}
	if s.log != nil {
		s.log.Infow("scheduler_settings_updated",
			"interval_minutes", snap.IntervalMinutes,
			"override_window_minutes", snap.OverrideWindowMinutes,
			"paused", snap.Paused,
		)
	}
	return snap, nil
}

// runTick is one pass of the reconciliation algorithm.
func (s *SchedulerService) runTick(ctx context.Context) (time.Time, error) {
	now := s.now()

	s.mu.Lock()
	s.lastCheck = now
	settings := s.settings
	s.mu.Unlock()

	if settings.Paused {
		return now, nil
	}

	weekday := strings.ToLower(now.Weekday().String())
	hhmm := now.Format("15:04")
	date := now.Format("2006-01-02")

	due, err := s.scheduleRepo.Due(ctx, weekday, hhmm, date)
	if err != nil {
		// Nothing was stamped yet, so it is safe to just wait for the next
		// tick.
		if s.log != nil {
			s.log.Errorw("scheduler_due_query_failed", "err", err)
		}
		return now, err
	}
	if len(due) == 0 {
		return now, nil
	}

	if s.log != nil {
		s.log.Infow("scheduler_due_set", "count", len(due), "time", hhmm)
	}

	window := time.Duration(settings.OverrideWindowMinutes) * time.Minute
	for _, d := range due {
		// Outcomes are independent: one schedule's failure must not block
		// the rest of the due set.
		s.process(ctx, d, now, date, window)
	}
	return now, nil
}

// process applies or skips one due schedule.
func (s *SchedulerService) process(ctx context.Context, d models.DueSchedule, now time.Time, date string, window time.Duration) {
	if d.LastOverride != nil && now.Sub(*d.LastOverride) < window {
		s.skipForOverride(ctx, d, now, date)
		return
	}

	if err := s.shadeRepo.SetPosition(ctx, d.ShadeID, d.TargetPosition, d.TargetPosition); err != nil {
		// last_executed_date was not stamped: the schedule stays in the due
		// set and is retried on the next tick.
		if s.log != nil {
			s.log.Errorw("scheduler_position_write_failed", "schedule", d.Name, "shade_id", d.ShadeID, "err", err)
		}
		return
	}
	if err := s.scheduleRepo.MarkExecuted(ctx, d.ScheduleID, date); err != nil {
		if s.log != nil {
			s.log.Errorw("scheduler_stamp_failed", "schedule", d.Name, "err", err)
		}
		return
	}

	if s.log != nil {
		s.log.Infow("scheduler_executed", "schedule", d.Name, "shade", d.DeviceName, "position", d.TargetPosition)
	}
	desc := fmt.Sprintf("Schedule %q executed: %s -> %d%%", d.Name, d.DeviceName, d.TargetPosition)
	if err := s.activityRepo.Append(ctx, models.ActivityEntry{
		Type:        models.ActivitySchedule,
		Description: desc,
		UserID:      d.CreatedBy,
	}); err != nil && s.log != nil {
		s.log.Errorw("scheduler_activity_append_failed", "schedule", d.Name, "err", err)
	}
}

// skipForOverride suppresses automatic execution for a schedule whose device
// was manually overridden inside the suppression window. The schedule is
// still stamped so it does not re-attempt later the same day.
func (s *SchedulerService) skipForOverride(ctx context.Context, d models.DueSchedule, now time.Time, date string) {
	if err := s.scheduleRepo.MarkExecuted(ctx, d.ScheduleID, date); err != nil {
		if s.log != nil {
			s.log.Errorw("scheduler_stamp_failed", "schedule", d.Name, "err", err)
		}
		return
	}

	ageMinutes := int(now.Sub(*d.LastOverride).Minutes())
	if s.log != nil {
		s.log.Infow("scheduler_skipped", "schedule", d.Name, "override_age_minutes", ageMinutes)
	}
	desc := fmt.Sprintf("Schedule %q skipped: manual override %d min ago", d.Name, ageMinutes)
	if err := s.activityRepo.Append(ctx, models.ActivityEntry{
		Type:        models.ActivitySchedule,
		Description: desc,
		UserID:      d.CreatedBy,
	}); err != nil && s.log != nil {
		s.log.Errorw("scheduler_activity_append_failed", "schedule", d.Name, "err", err)
	}
}
