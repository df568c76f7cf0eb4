package discovery

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and drives the periodic discovery cycle.
// One instance per deployment: running several without a distributed lock
// multiplies fetch traffic, though ingestion stays correct thanks to the
// source_url constraint.
type Scheduler struct {
	cron    *cron.Cron
	configs ConfigSource
	worker  *Worker
	spec    string // e.g. "@every 6h"
}

// NewScheduler creates a Scheduler that fires every intervalHours hours.
func NewScheduler(configs ConfigSource, worker *Worker, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger)),
		configs: configs,
		worker:  worker,
		spec:    fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the cron job and runs one cycle immediately so the feed
// is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	go s.RunCycle(ctx)

	return nil
}

// Stop shuts the scheduler down. A cycle in progress stops between pairs;
// an in-flight fetch is not cancelled.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// RunCycle loads all active configs and runs the worker for each one.
// Also triggerable on demand, independently of the cron cadence.
func (s *Scheduler) RunCycle(ctx context.Context) {
	log.Println("[scheduler] Discovery cycle started")

	configs, err := s.configs.ListActive(ctx)
	if err != nil {
		log.Printf("[scheduler] ListActive error: %v", err)
		return
	}
	if len(configs) == 0 {
		log.Println("[scheduler] No active search configs — nothing to do")
		return
	}

	log.Printf("[scheduler] Running discovery for %d config(s)", len(configs))
	for _, cfg := range configs {
		if ctx.Err() != nil {
			log.Println("[scheduler] Cycle interrupted by shutdown")
			return
		}
		s.worker.Run(ctx, cfg)
	}

	log.Println("[scheduler] Discovery cycle complete")
}

// RunCycleForUser runs one cycle restricted to a single user's active
// configs.
func (s *Scheduler) RunCycleForUser(ctx context.Context, userID string) {
	configs, err := s.configs.ListActiveForUser(ctx, userID)
	if err != nil {
		log.Printf("[scheduler] ListActiveForUser error: %v", err)
		return
	}
	for _, cfg := range configs {
		if ctx.Err() != nil {
			return
		}
		s.worker.Run(ctx, cfg)
	}
}
