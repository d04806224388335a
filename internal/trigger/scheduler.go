package trigger

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler manages the in-process timers that drive scheduled agent runs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
	ctx       context.Context
}

// NewScheduler creates a scheduler evaluating jobs in the given timezone.
func NewScheduler(loc *time.Location) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(loc)
	s.TagsUnique()

	return &Scheduler{
		scheduler: s,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler and cancels any managed context.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	if s.cancel != nil {
		s.cancel()
	}
}

// ScheduleCron schedules a job by cron expression.
func (s *Scheduler) ScheduleCron(tag string, cronExpr string, job func() error) error {
	_, err := s.scheduler.Cron(cronExpr).Tag(tag).Do(job)
	return err
}

// ScheduleInterval schedules a job to run at regular intervals.
func (s *Scheduler) ScheduleInterval(tag string, duration time.Duration, job func() error) error {
	_, err := s.scheduler.Every(duration).Tag(tag).Do(job)
	return err
}

// RemoveJob removes a scheduled job by tag.
func (s *Scheduler) RemoveJob(tag string) error {
	return s.scheduler.RemoveByTag(tag)
}
