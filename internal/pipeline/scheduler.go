package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/emberworks/rekindle/internal/store"
)

// Scheduler fires periodic ingestion runs from a standard 5-field cron
// expression. Overlapping fires are shed by the single-running-checkpoint
// guard, so a slow run and an eager schedule cannot double-process.
type Scheduler struct {
	cron *cronlib.Cron
}

// NewScheduler registers every runner on the given cron expression.
func NewScheduler(spec string, runners ...*Runner) (*Scheduler, error) {
	c := cronlib.New()
	for _, r := range runners {
		r := r
		if _, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
			defer cancel()
			if _, err := r.Run(ctx); err != nil {
				if errors.Is(err, store.ErrRunActive) {
					log.Printf("scheduler: %s run still in flight, skipping fire", r.Source.Name())
					return
				}
				log.Printf("scheduler: %s run: %v", r.Source.Name(), err)
			}
		}); err != nil {
			return nil, err
		}
	}
	return &Scheduler{cron: c}, nil
}

// Start begins firing scheduled runs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
