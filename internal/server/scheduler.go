package server

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// rebuildScheduler enqueues a rebuild on a fixed interval. It picks up
// changes the watcher cannot see, such as a moved git HEAD or edited
// environment.
type rebuildScheduler struct {
	scheduler gocron.Scheduler
}

func newRebuildScheduler(interval time.Duration, enqueue func()) (*rebuildScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(enqueue),
		gocron.WithName("scheduled-rebuild"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to schedule rebuild job: %w", err)
	}
	return &rebuildScheduler{scheduler: s}, nil
}

// Start begins running scheduled jobs.
func (s *rebuildScheduler) Start() { s.scheduler.Start() }

// Stop shuts the scheduler down and waits for running jobs.
func (s *rebuildScheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}
