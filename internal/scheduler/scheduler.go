package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic report job.
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start registers the report job under the given cron spec (UTC) and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if s.reportFunc == nil {
		log.Println("⚠️ Report function not set, scheduler will not generate reports")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() { s.runReport(spec) })
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - reports scheduled at %q UTC", spec)
	return nil
}

// RunNow triggers the report job synchronously.
func (s *Scheduler) RunNow() error {
	if s.reportFunc == nil {
		return nil
	}
	return s.reportFunc(s.ctx)
}

func (s *Scheduler) runReport(spec string) {
	log.Printf("🕘 Triggered report generation (%s)", spec)
	if err := s.reportFunc(s.ctx); err != nil {
		log.Printf("❌ Report generation failed: %v", err)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
