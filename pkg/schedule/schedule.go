// Package schedule re-runs a job on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sherine-k/skyline/pkg/logging"
)

// Job is called on every tick. Errors are logged; the schedule keeps
// running.
type Job func(ctx context.Context) error

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse validates a five-field cron expression or an @descriptor such as
// "@hourly" or "@every 10m".
func Parse(spec string) (cron.Schedule, error) {
	s, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cron schedule %q: %w", spec, err)
	}
	return s, nil
}

// Runner runs a job on a schedule
type Runner struct {
	spec     string
	schedule cron.Schedule
	job      Job
}

// New creates a runner for the given cron expression
func New(spec string, job Job) (*Runner, error) {
	s, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	return &Runner{spec: spec, schedule: s, job: job}, nil
}

// Next returns the first activation after t.
func (r *Runner) Next(t time.Time) time.Time {
	return r.schedule.Next(t)
}

// Run starts the scheduler and blocks until ctx is done. Overlapping runs
// are skipped. Running jobs are waited for before returning.
func (r *Runner) Run(ctx context.Context) error {
	log := logging.Logger()

	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(r.schedule, cron.FuncJob(func() {
		if err := r.job(ctx); err != nil {
			log.Error("scheduled run failed", "schedule", r.spec, "error", err)
		}
	}))

	c.Start()
	log.Info("schedule started", "schedule", r.spec, "next", r.Next(time.Now()))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
