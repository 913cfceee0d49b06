// Package scheduler runs periodic household jobs such as the XLSX report.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-co-op/gocron/v2"
)

type Task func(ctx context.Context) error

type Scheduler struct {
	scheduler gocron.Scheduler
}

func New(opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	return &Scheduler{scheduler: s}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// AddCron registers task under a cron expression with an optional seconds field.
// Overlapping runs are skipped.
func (s *Scheduler) AddCron(name, crontab string, task Task) error {
	_, err := s.scheduler.NewJob(
		gocron.CronJob(crontab, true),
		gocron.NewTask(recovered(name, task)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}

	return nil
}

// Jobs lists the names of registered jobs.
func (s *Scheduler) Jobs() []string {
	jobs := s.scheduler.Jobs()

	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}

	return names
}

func recovered(name string, task Task) func(ctx context.Context) {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("job panicked", "job", name, "panic", r, "stack", string(debug.Stack()))
			}
		}()

		if err := task(ctx); err != nil {
			slog.Error("job failed", "job", name, "error", err)
			return
		}

		slog.Debug("job completed", "job", name)
	}
}
