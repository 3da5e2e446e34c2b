package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-season-tickets/app/factory"
)

// Job is a scheduled unit of work. ctx is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Scheduler runs registered jobs on cron schedules. A panicking job is
// recovered and logged; the schedule keeps firing.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger logrus.FieldLogger
}

func New(location *time.Location) *Scheduler {
	logger := factory.NewModuleLogger("scheduler")
	if location == nil {
		location = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Register adds job under name. schedule accepts the standard five-field format
// and descriptors such as "@every 1h" or "@daily".
func (s *Scheduler) Register(schedule, name string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		start := time.Now()
		l := s.logger.WithField("job", name)
		l.Info("job_started")
		job(s.ctx)
		l.WithField("duration", time.Since(start).String()).Info("job_finished")
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, schedule, err)
	}

	s.logger.WithField("job", name).WithField("schedule", schedule).Info("job_scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
