package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtrail/core-service/internal/event"
	"jobtrail/core-service/internal/httpapi"
	"jobtrail/core-service/internal/model"
)

// fakeStore implements httpapi.Store; only the feed and config methods
// exercised here do real work.
type fakeStore struct {
	configs map[string]*model.SearchConfig
	seen    map[string]bool // manual dedup by source URL
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{configs: map[string]*model.SearchConfig{}, seen: map[string]bool{}}
}

func (f *fakeStore) ListConfigs(ctx context.Context, userID string) ([]model.SearchConfig, error) {
	return nil, nil
}

func (f *fakeStore) GetConfig(ctx context.Context, userID, configID string) (*model.SearchConfig, error) {
	if c, ok := f.configs[configID]; ok && c.UserID == userID {
		return c, nil
	}
	return nil, fmt.Errorf("unexpected GetConfig(%s)", configID)
}

func (f *fakeStore) CreateConfig(ctx context.Context, userID string, c model.SearchConfig) (*model.SearchConfig, error) {
	return &c, nil
}

func (f *fakeStore) UpdateConfig(ctx context.Context, userID, configID string, c model.SearchConfig) (*model.SearchConfig, error) {
	return &c, nil
}

func (f *fakeStore) DeleteConfig(ctx context.Context, userID, configID string) error { return nil }

func (f *fakeStore) ListPendingFeed(ctx context.Context, userID string) ([]model.JobFeedItem, error) {
	return nil, nil
}

func (f *fakeStore) InsertManual(ctx context.Context, userID string, configID *string, sourceURL string, raw json.RawMessage, expiresAt time.Time) (string, bool, error) {
	if f.seen[sourceURL] {
		return "", false, nil
	}
	f.seen[sourceURL] = true
	f.nextID++
	return fmt.Sprintf("feed-%d", f.nextID), true, nil
}

type recordingPublisher struct {
	events []struct {
		topic   string
		payload map[string]string
	}
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, payload any) error {
	p.events = append(p.events, struct {
		topic   string
		payload map[string]string
	}{topic, payload.(map[string]string)})
	return nil
}

// fakeScanner signals which cycle variant ran; triggerScan fires it on a
// detached goroutine, hence the channels.
type fakeScanner struct {
	full   chan struct{}
	scoped chan string
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{full: make(chan struct{}, 1), scoped: make(chan string, 1)}
}

func (s *fakeScanner) RunCycle(ctx context.Context) { s.full <- struct{}{} }

func (s *fakeScanner) RunCycleForUser(ctx context.Context, userID string) { s.scoped <- userID }

func newTestRouter(store httpapi.Store, sched httpapi.Scanner, pub event.Publisher) http.Handler {
	h := httpapi.NewHandler(store, nil, nil, sched, pub, 30*24*time.Hour)
	return httpapi.NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path, uid, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("x-user-id", uid)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddManualJob_PublishesDiscoveredEvent(t *testing.T) {
	pub := &recordingPublisher{}
	router := newTestRouter(newFakeStore(), newFakeScanner(), pub)

	rec := doJSON(t, router, http.MethodPost, "/v1/feed", "user-1",
		`{"companyName":"Acme","title":"Backend Developer"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["jobFeedId"])

	require.Len(t, pub.events, 1)
	assert.Equal(t, event.TopicJobDiscovered, pub.events[0].topic)
	assert.Equal(t, resp["jobFeedId"], pub.events[0].payload["jobFeedId"])
	assert.Equal(t, "user-1", pub.events[0].payload["userId"])
}

func TestAddManualJob_DuplicateConflictPublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	router := newTestRouter(newFakeStore(), newFakeScanner(), pub)

	body := `{"companyName":"Acme"}`
	rec := doJSON(t, router, http.MethodPost, "/v1/feed", "user-1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/feed", "user-1", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, pub.events, 1, "the duplicate insert must not publish a second event")
}

func TestAddManualJob_RedFlaggedAgainstReferencedConfig(t *testing.T) {
	store := newFakeStore()
	cfgID := "7f8a1a2e-3b4c-4d5e-8f90-123456789abc"
	store.configs[cfgID] = &model.SearchConfig{ID: cfgID, UserID: "user-1", RedFlags: []string{"unpaid"}}
	pub := &recordingPublisher{}
	router := newTestRouter(store, newFakeScanner(), pub)

	rec := doJSON(t, router, http.MethodPost, "/v1/feed", "user-1",
		fmt.Sprintf(`{"companyName":"Acme","title":"Unpaid internship","searchConfigId":%q}`, cfgID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, pub.events)
}

func TestTriggerScan_DefaultsToCallerScope(t *testing.T) {
	sched := newFakeScanner()
	router := newTestRouter(newFakeStore(), sched, &recordingPublisher{})

	rec := doJSON(t, router, http.MethodPost, "/v1/scan", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case uid := <-sched.scoped:
		assert.Equal(t, "user-1", uid)
	case <-sched.full:
		t.Fatal("default scan must not run the global cycle")
	case <-time.After(time.Second):
		t.Fatal("no scan ran")
	}
}

func TestTriggerScan_AllScopeRunsGlobalCycle(t *testing.T) {
	sched := newFakeScanner()
	router := newTestRouter(newFakeStore(), sched, &recordingPublisher{})

	rec := doJSON(t, router, http.MethodPost, "/v1/scan?scope=all", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-sched.full:
	case uid := <-sched.scoped:
		t.Fatalf("scope=all ran the scoped cycle for %s", uid)
	case <-time.After(time.Second):
		t.Fatal("no scan ran")
	}
}

func TestFeedRoutes_RequireUserHeader(t *testing.T) {
	router := newTestRouter(newFakeStore(), newFakeScanner(), &recordingPublisher{})

	req := httptest.NewRequest(http.MethodPost, "/v1/feed", strings.NewReader(`{"companyName":"Acme"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
