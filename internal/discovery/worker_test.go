package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtrail/core-service/internal/event"
	"jobtrail/core-service/internal/model"
)

// stubFetcher returns canned listings per (title, location) pair and can
// fail selected pairs.
type stubFetcher struct {
	byPair   map[string][]model.JobListing
	failPair map[string]error
	calls    []string
}

func pairKey(title, location string) string { return title + "|" + location }

func (s *stubFetcher) Fetch(ctx context.Context, title, location string) ([]model.JobListing, error) {
	key := pairKey(title, location)
	s.calls = append(s.calls, key)
	if err, ok := s.failPair[key]; ok {
		return nil, err
	}
	return s.byPair[key], nil
}

// memFeed records inserts and reports duplicates by source URL.
type memFeed struct {
	seen     map[string]bool
	inserted []model.JobListing
	expires  []time.Time
	nextID   int
	err      error
}

func newMemFeed() *memFeed { return &memFeed{seen: map[string]bool{}} }

func (m *memFeed) InsertPending(ctx context.Context, userID string, configID *string, job model.JobListing, expiresAt time.Time) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	if m.seen[job.SourceURL] {
		return "", false, nil
	}
	m.seen[job.SourceURL] = true
	m.inserted = append(m.inserted, job)
	m.expires = append(m.expires, expiresAt)
	m.nextID++
	return fmt.Sprintf("feed-%d", m.nextID), true, nil
}

type memPublisher struct {
	topics []string
}

func (p *memPublisher) Publish(ctx context.Context, topic string, payload any) error {
	p.topics = append(p.topics, topic)
	return nil
}

var _ event.Publisher = (*memPublisher)(nil)

func testConfig() model.SearchConfig {
	return model.SearchConfig{
		ID:        "cfg-1",
		UserID:    "user-1",
		JobTitles: []string{"developer"},
		Locations: []string{"Paris"},
		RedFlags:  []string{"unpaid"},
		IsActive:  true,
	}
}

func TestWorkerRun_FiltersAndInserts(t *testing.T) {
	fetcher := &stubFetcher{byPair: map[string][]model.JobListing{
		pairKey("developer", "Paris"): {
			{ExternalID: "a", Title: "Backend Developer", SourceURL: "https://example.org/a"},
			{ExternalID: "b", Title: "Unpaid internship", SourceURL: "https://example.org/b"},
		},
	}}
	feed := newMemFeed()
	pub := &memPublisher{}
	w := NewWorker(fetcher, feed, pub, 30*24*time.Hour)

	stats := w.Run(context.Background(), testConfig())

	assert.Equal(t, Stats{Inserted: 1, Filtered: 1, Duplicates: 0}, stats)
	require.Len(t, feed.inserted, 1)
	assert.Equal(t, "https://example.org/a", feed.inserted[0].SourceURL)
	assert.Equal(t, []string{event.TopicJobDiscovered}, pub.topics, "one event per inserted row")
}

func TestWorkerRun_CountsDuplicates(t *testing.T) {
	listing := model.JobListing{ExternalID: "a", Title: "Dev", SourceURL: "https://example.org/a"}
	fetcher := &stubFetcher{byPair: map[string][]model.JobListing{
		pairKey("developer", "Paris"): {listing},
	}}
	feed := newMemFeed()
	pub := &memPublisher{}
	w := NewWorker(fetcher, feed, pub, time.Hour)

	cfg := testConfig()
	first := w.Run(context.Background(), cfg)
	second := w.Run(context.Background(), cfg)

	assert.Equal(t, Stats{Inserted: 1}, first)
	assert.Equal(t, Stats{Duplicates: 1}, second)
	assert.Len(t, pub.topics, 1, "a duplicate must not publish an event")
}

func TestWorkerRun_SynthesizesSourceURL(t *testing.T) {
	fetcher := &stubFetcher{byPair: map[string][]model.JobListing{
		pairKey("developer", "Paris"): {{ExternalID: "ext-42", Title: "Dev"}}, // no URL from the source
	}}
	feed := newMemFeed()
	w := NewWorker(fetcher, feed, &memPublisher{}, time.Hour)

	w.Run(context.Background(), testConfig())

	require.Len(t, feed.inserted, 1)
	assert.Equal(t, "adzuna:ext-42", feed.inserted[0].SourceURL)
}

func TestWorkerRun_PairFailureDoesNotStopOthers(t *testing.T) {
	fetcher := &stubFetcher{
		byPair: map[string][]model.JobListing{
			pairKey("developer", "Lyon"): {{ExternalID: "a", SourceURL: "https://example.org/a"}},
		},
		failPair: map[string]error{
			pairKey("developer", "Paris"): errors.New("upstream 500"),
		},
	}
	feed := newMemFeed()
	w := NewWorker(fetcher, feed, &memPublisher{}, time.Hour)

	cfg := testConfig()
	cfg.Locations = []string{"Paris", "Lyon"}
	stats := w.Run(context.Background(), cfg)

	assert.Equal(t, []string{pairKey("developer", "Paris"), pairKey("developer", "Lyon")}, fetcher.calls)
	assert.Equal(t, Stats{Inserted: 1}, stats, "Lyon results must land despite the Paris failure")
}

func TestWorkerRun_InsertFailureSkipsListing(t *testing.T) {
	fetcher := &stubFetcher{byPair: map[string][]model.JobListing{
		pairKey("developer", "Paris"): {{ExternalID: "a", SourceURL: "https://example.org/a"}},
	}}
	feed := newMemFeed()
	feed.err = errors.New("connection reset")
	pub := &memPublisher{}
	w := NewWorker(fetcher, feed, pub, time.Hour)

	stats := w.Run(context.Background(), testConfig())

	assert.Equal(t, Stats{}, stats)
	assert.Empty(t, pub.topics)
}

func TestWorkerRun_StampsExpiry(t *testing.T) {
	fetcher := &stubFetcher{byPair: map[string][]model.JobListing{
		pairKey("developer", "Paris"): {{ExternalID: "a", SourceURL: "https://example.org/a"}},
	}}
	feed := newMemFeed()
	ttl := 30 * 24 * time.Hour
	w := NewWorker(fetcher, feed, &memPublisher{}, ttl)

	before := time.Now().UTC()
	w.Run(context.Background(), testConfig())

	require.Len(t, feed.expires, 1)
	got := feed.expires[0]
	assert.WithinDuration(t, before.Add(ttl), got, 5*time.Second)
}

func TestStatsAdd(t *testing.T) {
	a := Stats{Inserted: 1, Filtered: 2, Duplicates: 3}
	b := Stats{Inserted: 10, Filtered: 20, Duplicates: 30}
	assert.Equal(t, Stats{Inserted: 11, Filtered: 22, Duplicates: 33}, a.add(b))
}
