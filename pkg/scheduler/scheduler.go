package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"MacroTilt/pkg/logger"
)

// Job represents a scheduled job.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type funcJob struct {
	name string
	fn   func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

// NewJob wraps fn as a named Job.
func NewJob(name string, fn func(ctx context.Context) error) Job {
	return funcJob{name: name, fn: fn}
}

// Scheduler runs jobs on cron schedules with a seconds field. A run that is still going when
// its next tick fires is skipped rather than stacked.
type Scheduler struct {
	cron   *cron.Cron
	log    *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler.
func New(log *logger.Logger) *Scheduler {
	log = log.With(logger.String("component", "scheduler"))
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", logger.Int("jobs", len(s.cron.Entries())))
}

// Stop cancels running jobs and waits for them, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// AddJob registers a job. Schedule examples:
//   - "0 */30 * * * *"  every 30 minutes
//   - "@every 10m"
//   - "@hourly"
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.run(job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", job.Name(), schedule, err)
	}

	s.log.Info("job registered",
		logger.String("schedule", schedule),
		logger.String("job", job.Name()))
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info("running job immediately", logger.String("job", job.Name()))
	return job.Run(s.ctx)
}

func (s *Scheduler) run(job Job) {
	s.log.Debug("running job", logger.String("job", job.Name()))
	if err := job.Run(s.ctx); err != nil {
		s.log.Error("job failed", logger.String("job", job.Name()), logger.Error(err))
		return
	}
	s.log.Debug("job completed", logger.String("job", job.Name()))
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kv(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kv(keysAndValues), logger.Error(err))...)
}

func kv(keysAndValues []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}
