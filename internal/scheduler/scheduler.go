package scheduler

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/log"

	"github.com/robfig/cron/v3"
)

// Renewer advances subscriptions whose payment date has passed.
type Renewer interface {
	RenewDue(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	cfg     config.SchedulerConfig
	renewer Renewer
	log     *log.Logger
	now     func() time.Time
	timeout time.Duration
}

func New(cfg config.SchedulerConfig, renewer Renewer, logger *log.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		cfg:     cfg,
		renewer: renewer,
		log:     logger.WithComponent(log.ComponentScheduler),
		now:     time.Now,
		timeout: 5 * time.Minute,
	}
}

// Start registers the jobs and starts the cron runner. It does nothing when
// the scheduler is disabled.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.log.Info("scheduler disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.RenewalCron, s.renewSubscriptions); err != nil {
		return fmt.Errorf("add renewal job: %w", err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", "renewal_cron", s.cfg.RenewalCron)
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
		return
	}
	s.log.Info("scheduler stopped")
}

// RunOnce executes the renewal job synchronously.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	return s.renewer.RenewDue(ctx, s.now().UTC())
}

func (s *Scheduler) renewSubscriptions() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.RunOnce(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "subscription renewal failed",
			log.FieldOperation, log.OpRenew,
			log.FieldError, err.Error())
		return
	}
	s.log.DebugContext(ctx, "subscription renewal finished", log.FieldOperation, log.OpRenew, log.FieldCount, n)
}
