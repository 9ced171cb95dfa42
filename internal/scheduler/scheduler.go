// Package scheduler runs the three updaters on cron schedules inside the
// server process. Each schedule is optional; an empty cron expression leaves
// that task to the standalone updater binary.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Task is one scheduled updater invocation.
type Task func(ctx context.Context)

// Scheduler manages the cron tasks.
type Scheduler struct {
	Cron *cron.Cron
	Ctx  context.Context
}

// NewScheduler creates a Scheduler.
func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Ctx:  ctx,
	}
}

// Register adds one task under the given cron expression. An empty
// expression is a no-op.
func (s *Scheduler) Register(name, spec string, task Task) error {
	if spec == "" {
		return nil
	}
	_, err := s.Cron.AddFunc(spec, func() {
		log.Printf("[INFO] running scheduled %s update", name)
		task(s.Ctx)
	})
	if err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	log.Printf("[INFO] scheduled %s update: %q", name, spec)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
