package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"banketl/internal/logger"
	"banketl/internal/pipeline"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// Scheduler re-runs the pipeline on a cron schedule. A tick that fires while
// the previous run is still going is skipped.
type Scheduler struct {
	Cron   *cron.Cron
	Runner Runner
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler. Specs use the standard five-field
// cron syntax, with an optional leading seconds field.
func NewScheduler(ctx context.Context, r Runner) *Scheduler {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cl := cronLogger{}
	return &Scheduler{
		Cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		Runner: r,
		Ctx:    ctx,
	}
}

// Register adds the pipeline run at spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.runTask); err != nil {
		return fmt.Errorf("register pipeline task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunNow executes the pipeline immediately and returns its result.
func (s *Scheduler) RunNow() (*pipeline.Report, error) {
	return s.Runner.Run(s.Ctx)
}

func (s *Scheduler) runTask() {
	if s.Ctx.Err() != nil {
		return
	}
	if _, err := s.Runner.Run(s.Ctx); err != nil {
		logger.Error(err, "scheduled run failed")
	}
}

// cronLogger routes cron's own messages to the shared logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	logger.Get().WithFields(fields(kv)).Debug("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	logger.Get().WithError(err).WithFields(fields(kv)).Error("cron: " + msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
