// Package reminder pushes show-backup-reminder when the last backup is too old.
package reminder

import (
	"math"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/ledgerdesk/ledgerdesk/internal/appstate"
	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/notify"
)

const (
	// DefaultSchedule is used when the config leaves the schedule empty.
	DefaultSchedule = "@every 1h"
	// DefaultIntervalDays is used when the config leaves the interval at zero.
	DefaultIntervalDays = 7

	day = 24 * time.Hour
)

// StateReader exposes the backup bookkeeping.
type StateReader interface {
	Snapshot() appstate.Snapshot
}

// Publisher delivers push events.
type Publisher interface {
	Publish(e notify.Event) int
}

// Payload is sent with every reminder. LastBackupAt is nil when no backup was ever made.
type Payload struct {
	LastBackupAt    *time.Time `json:"lastBackupAt"`
	DaysSinceBackup int        `json:"daysSinceBackup"`
}

// Service runs the reminder check on a cron schedule.
type Service struct {
	cfg   config.Reminder
	state StateReader
	pub   Publisher
	now   func() time.Time

	mu        sync.Mutex
	scheduler *cron.Cron
}

// New creates the service. Zero config values fall back to the defaults.
func New(cfg config.Reminder, state StateReader, pub Publisher) *Service {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}

	if cfg.IntervalDays == 0 {
		cfg.IntervalDays = DefaultIntervalDays
	}

	return &Service{cfg: cfg, state: state, pub: pub, now: time.Now}
}

// Start schedules the check and, when configured, runs it once right away.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return nil
	}

	scheduler := cron.New()

	if _, err := scheduler.AddFunc(s.cfg.Schedule, func() { s.Check() }); err != nil {
		return pkgerrors.Wrapf(err, "schedule %q", s.cfg.Schedule)
	}

	scheduler.Start()
	s.scheduler = scheduler

	log.Info().
		Str("schedule", s.cfg.Schedule).
		Int("intervalDays", s.cfg.IntervalDays).
		Msg("backup reminder scheduler started")

	if s.cfg.CheckOnStart {
		go s.Check()
	}

	return nil
}

// Stop stops the scheduler and waits for a running check.
func (s *Service) Stop() {
	s.mu.Lock()
	scheduler := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if scheduler == nil {
		return
	}

	<-scheduler.Stop().Done()
	log.Info().Msg("backup reminder scheduler stopped")
}

// Due reports whether a reminder is due at now and the payload to send.
func (s *Service) Due(now time.Time) (bool, Payload) {
	snap := s.state.Snapshot()
	if snap.LastBackupAt == nil {
		return true, Payload{}
	}

	elapsed := now.Sub(*snap.LastBackupAt)
	p := Payload{
		LastBackupAt:    snap.LastBackupAt,
		DaysSinceBackup: int(math.Floor(elapsed.Hours() / 24)), //nolint:mnd
	}

	return elapsed >= time.Duration(s.cfg.IntervalDays)*day, p
}

// Check publishes the reminder when it is due and reports whether it did.
func (s *Service) Check() bool {
	due, payload := s.Due(s.now())
	if !due {
		return false
	}

	n := s.pub.Publish(notify.Event{Channel: notify.ChannelBackupReminder, Payload: payload})

	log.Debug().
		Int("subscribers", n).
		Int("daysSinceBackup", payload.DaysSinceBackup).
		Msg("backup reminder published")

	return true
}
