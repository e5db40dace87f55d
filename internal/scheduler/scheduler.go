package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Sweeper is implemented by stores that evict idle state.
type Sweeper interface {
	Sweep() int
}

// Scheduler periodically sweeps idle sessions out of the store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		sweeper:   sweeper,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: sweep interval not set; idle sessions are kept")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.runSweep)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runSweep() {
	if n := s.sweeper.Sweep(); n > 0 {
		s.logger.Info("scheduler: evicted idle sessions", "count", n)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
