// Package scheduler runs the background jobs of `atc daemon`: the monthly
// holiday refresh and the daily retention cleanup.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Tiliavir/attendance-time-calculator/internal/config"
	"github.com/Tiliavir/attendance-time-calculator/internal/holiday"
)

// HolidaySyncer refreshes the holiday cache of a year.
type HolidaySyncer interface {
	Sync(ctx context.Context, year int, force bool) (holiday.SyncResult, error)
}

// Cleaner deletes stored days older than the retention window.
type Cleaner interface {
	Cleanup(retentionDays int) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	holidays HolidaySyncer
	cleaner  Cleaner
	cfg      config.Config
	now      func() time.Time
	logger   zerolog.Logger
}

// New creates a scheduler. Either job dependency may be nil to skip that job.
func New(cfg config.Config, holidays HolidaySyncer, cleaner Cleaner, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		holidays: holidays,
		cleaner:  cleaner,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the jobs and starts the cron loop. It returns the number
// of jobs scheduled; a job with an invalid schedule is logged and skipped.
func (s *Scheduler) Start() int {
	s.logger.Info().Msg("starting scheduler")

	scheduled := 0
	if s.holidays != nil {
		if _, err := s.cron.AddFunc(s.cfg.Holidays.SyncSchedule, s.SyncHolidays); err != nil {
			s.logger.Error().Err(err).Str("schedule", s.cfg.Holidays.SyncSchedule).Msg("failed to schedule holiday sync")
		} else {
			scheduled++
		}
	}
	if s.cleaner != nil {
		if _, err := s.cron.AddFunc(s.cfg.Holidays.CleanupSchedule, s.Cleanup); err != nil {
			s.logger.Error().Err(err).Str("schedule", s.cfg.Holidays.CleanupSchedule).Msg("failed to schedule cleanup")
		} else {
			scheduled++
		}
	}

	s.cron.Start()
	return scheduled
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("stopping scheduler")
	<-s.cron.Stop().Done()
}

// SyncHolidays refreshes the holidays of the current year. The cache is
// monthly, so repeated runs within a month do not hit the API.
func (s *Scheduler) SyncHolidays() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	year := s.now().Year()
	res, err := s.holidays.Sync(ctx, year, false)
	if err != nil {
		s.logger.Error().Err(err).Int("year", year).Msg("holiday sync failed")
		return
	}
	s.logger.Info().Int("year", res.Year).Str("origin", res.Origin).Int("count", res.Count).Msg("holidays synced")
}

// Cleanup applies the storage retention window.
func (s *Scheduler) Cleanup() {
	n, err := s.cleaner.Cleanup(s.cfg.Storage.RetentionDays)
	if err != nil {
		s.logger.Error().Err(err).Msg("cleanup failed")
		return
	}
	s.logger.Info().Int("deleted", n).Msg("cleanup finished")
}

// SetClock replaces the time source used to pick the sync year.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }
