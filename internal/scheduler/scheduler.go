package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a single task at a fixed interval.
type Scheduler struct {
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration
	task     func(ctx context.Context) error
}

func New(interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
	}
}

// SetTask sets the function executed on every tick.
func (s *Scheduler) SetTask(f func(ctx context.Context) error) {
	s.task = f
}

// Start registers the task and starts ticking. Ticks that arrive while the
// previous run is still going are skipped.
func (s *Scheduler) Start() error {
	if s.task == nil {
		return fmt.Errorf("scheduler task not set")
	}
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		if err := s.task(s.ctx); err != nil && s.ctx.Err() == nil {
			log.Printf("⚠️ scheduled task failed: %v", err)
		}
	}))

	s.cron.Start()
	log.Printf("📅 Scheduler started - every %s", s.interval)
	return nil
}

// Stop stops the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	log.Println("📅 Scheduler stopped")
}
