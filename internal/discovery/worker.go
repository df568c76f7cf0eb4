package discovery

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobtrail/core-service/internal/event"
	"jobtrail/core-service/internal/model"
)

// ConfigSource is read access to active search configurations.
type ConfigSource interface {
	ListActive(ctx context.Context) ([]model.SearchConfig, error)
	ListActiveForUser(ctx context.Context, userID string) ([]model.SearchConfig, error)
}

// FeedStore lands discovered listings in the triage inbox.
type FeedStore interface {
	// InsertPending inserts a PENDING feed row unless a row with the same
	// source_url already exists, in one atomic statement. Returns the new
	// row id and true when inserted, "" and false on a duplicate.
	InsertPending(ctx context.Context, userID string, configID *string, job model.JobListing, expiresAt time.Time) (string, bool, error)
}

// Stats are the per-config counters of one discovery run.
type Stats struct {
	Inserted   int
	Filtered   int
	Duplicates int
}

func (s Stats) add(o Stats) Stats {
	return Stats{s.Inserted + o.Inserted, s.Filtered + o.Filtered, s.Duplicates + o.Duplicates}
}

// Worker runs the discovery cycle for a single SearchConfig: fetch per
// (title × location) pair, red-flag filter, dedup insert, and a
// job-discovered event per new row. A failure on one pair is logged and
// the loop proceeds to the next pair.
type Worker struct {
	fetcher Fetcher
	feed    FeedStore
	events  event.Publisher
	feedTTL time.Duration
}

// NewWorker constructs a Worker. feedTTL is the expiry horizon stamped on
// every inserted feed item.
func NewWorker(fetcher Fetcher, feed FeedStore, events event.Publisher, feedTTL time.Duration) *Worker {
	return &Worker{fetcher: fetcher, feed: feed, events: events, feedTTL: feedTTL}
}

// Run executes one discovery pass for cfg and returns the accumulated
// counters. It never returns early: every (title × location) pair is
// attempted regardless of failures on the others.
func (w *Worker) Run(ctx context.Context, cfg model.SearchConfig) Stats {
	log.Printf("[worker] Starting discovery for config %s (user %s): titles=%v locations=%v",
		cfg.ID, cfg.UserID, cfg.JobTitles, cfg.Locations)

	var total Stats
	for _, title := range cfg.JobTitles {
		for _, location := range cfg.Locations {
			stats, err := w.runPair(ctx, cfg, title, location)
			if err != nil {
				log.Printf("[worker] Error on pair (%q, %q) for config %s: %v — continuing",
					title, location, cfg.ID, err)
				continue
			}
			total = total.add(stats)
		}
	}

	log.Printf("[worker] Config %s done — inserted=%d filtered=%d duplicates=%d",
		cfg.ID, total.Inserted, total.Filtered, total.Duplicates)
	return total
}

func (w *Worker) runPair(ctx context.Context, cfg model.SearchConfig, title, location string) (Stats, error) {
	var stats Stats

	results, err := w.fetcher.Fetch(ctx, title, location)
	if err != nil {
		return stats, fmt.Errorf("fetch: %w", err)
	}

	expiresAt := time.Now().UTC().Add(w.feedTTL)

	for _, job := range results {
		if ContainsRedFlag(job.Title, job.Company, job.Description, cfg.RedFlags) {
			stats.Filtered++
			continue
		}

		// The source may omit a canonical URL; the dedup key then falls
		// back to the external id.
		if job.SourceURL == "" {
			job.SourceURL = fmt.Sprintf("adzuna:%s", job.ExternalID)
		}

		configID := cfg.ID
		id, inserted, err := w.feed.InsertPending(ctx, cfg.UserID, &configID, job, expiresAt)
		if err != nil {
			log.Printf("[worker] Insert failed for %s (config %s): %v", job.SourceURL, cfg.ID, err)
			continue
		}
		if !inserted {
			stats.Duplicates++
			continue
		}
		stats.Inserted++

		payload := map[string]string{
			"type":           event.TopicJobDiscovered,
			"jobFeedId":      id,
			"userId":         cfg.UserID,
			"searchConfigId": cfg.ID,
		}
		if err := w.events.Publish(ctx, event.TopicJobDiscovered, payload); err != nil {
			log.Printf("[worker] Publish EVENT_JOB_DISCOVERED failed for %s: %v", id, err)
		}
	}

	return stats, nil
}
