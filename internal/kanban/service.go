// Package kanban contains the transition table (transitions.go) and the
// transport-agnostic application service built on it.
package kanban

import (
	"context"
	"log/slog"
	"time"

	"jobtrail/core-service/internal/apperr"
	"jobtrail/core-service/internal/event"
	"jobtrail/core-service/internal/model"
)

// Store is the persistence surface the service needs. The Postgres
// implementation lives in internal/storage; tests substitute an in-memory
// fake.
type Store interface {
	// GetApplication returns the application scoped by (id, owner), or
	// apperr.ErrNotFound.
	GetApplication(ctx context.Context, userID, appID string) (*model.Application, error)

	// GetFeedItem returns the feed item scoped by (id, owner), or
	// apperr.ErrNotFound.
	GetFeedItem(ctx context.Context, userID, feedID string) (*model.JobFeedItem, error)

	// ListApplications returns the owner's applications, newest first,
	// optionally filtered by status.
	ListApplications(ctx context.Context, userID, statusFilter string) ([]model.Application, error)

	// CreateApplication inserts at the initial status. On a
	// (user_id, job_feed_id) conflict it touches updated_at on the existing
	// row and returns it otherwise unchanged.
	CreateApplication(ctx context.Context, userID string, jobFeedID *string, initial Status) (*model.Application, error)

	// SwapStatus sets the new status, appends exactly one history record
	// and refreshes updated_at in a single statement conditioned on the row
	// still being at `from`. Returns apperr.ErrNotFound when no row matched.
	SwapStatus(ctx context.Context, userID, appID string, from, to Status, rec model.TransitionRecord) (*model.Application, error)

	SetNote(ctx context.Context, userID, appID, note string) (*model.Application, error)
	SetRating(ctx context.Context, userID, appID string, rating int) (*model.Application, error)
	SetReminder(ctx context.Context, userID, appID string, remindAt time.Time) (*model.Application, error)

	// ArchiveConfigForApplication deactivates the search config reachable
	// through the application's feed item, if any.
	ArchiveConfigForApplication(ctx context.Context, appID string) error
}

// Service encapsulates all kanban business logic. It has no dependency on
// the transport layer.
type Service struct {
	store  Store
	events event.Publisher
}

// NewService returns a configured Service.
func NewService(store Store, events event.Publisher) *Service {
	return &Service{store: store, events: events}
}

// ListApplications returns all applications for the given user, newest
// first. statusFilter, when non-empty, must parse as a valid status.
func (s *Service) ListApplications(ctx context.Context, userID, statusFilter string) ([]model.Application, error) {
	if statusFilter != "" {
		if _, err := ParseStatus(statusFilter); err != nil {
			return nil, apperr.Validationf("%v", err)
		}
	}
	return s.store.ListApplications(ctx, userID, statusFilter)
}

// GetApplication returns a single application, validating ownership.
func (s *Service) GetApplication(ctx context.Context, userID, appID string) (*model.Application, error) {
	return s.store.GetApplication(ctx, userID, appID)
}

// CreateApplication creates an application at the initial status.
// Idempotent per (owner, jobFeedID): a repeat call returns the existing
// row with only updated_at touched. A jobFeedID pointing at another
// user's feed item is indistinguishable from a missing one. Publishes
// CMD_ANALYZE_JOB afterwards so the AI coach scores the application
// (non-fatal).
func (s *Service) CreateApplication(ctx context.Context, userID string, jobFeedID *string) (*model.Application, error) {
	if jobFeedID != nil {
		if _, err := s.store.GetFeedItem(ctx, userID, *jobFeedID); err != nil {
			return nil, err
		}
	}

	app, err := s.store.CreateApplication(ctx, userID, jobFeedID, InitialStatus)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{
		"type":          event.TopicAnalyzeJob,
		"applicationId": app.ID,
		"jobFeedId":     app.JobFeedID,
		"userId":        userID,
	}
	if err := s.events.Publish(ctx, event.TopicAnalyzeJob, payload); err != nil {
		slog.Warn("publish CMD_ANALYZE_JOB failed", "applicationId", app.ID, "err", err)
	}

	return app, nil
}

// MoveCard transitions an application to a new status.
//
// Returns apperr.ErrNotFound when the application is missing or not owned
// by userID, and a ValidationError when newStatusRaw does not parse or the
// transition table disallows the move. The status change, history append
// and timestamp refresh are one storage operation conditioned on the
// status the caller validated against, so two concurrent movers cannot
// both commit.
func (s *Service) MoveCard(ctx context.Context, userID, appID, newStatusRaw string) (*model.Application, error) {
	newStatus, err := ParseStatus(newStatusRaw)
	if err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	cur, err := s.store.GetApplication(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	currentStatus, err := ParseStatus(cur.CurrentStatus)
	if err != nil {
		return nil, err
	}
	if !IsTransitionAllowed(currentStatus, newStatus) {
		return nil, apperr.Validationf("transition %s → %s is not allowed", currentStatus, newStatus)
	}

	rec := model.TransitionRecord{
		From: string(currentStatus),
		To:   string(newStatus),
		At:   time.Now().UTC(),
	}

	app, err := s.store.SwapStatus(ctx, userID, appID, currentStatus, newStatus, rec)
	if apperr.IsNotFound(err) {
		// The row existed a moment ago: a concurrent caller moved it first.
		return nil, apperr.Validationf("application status changed concurrently, reload and retry")
	}
	if err != nil {
		return nil, err
	}

	if IsHired(newStatus) {
		if err := s.store.ArchiveConfigForApplication(ctx, appID); err != nil {
			slog.Warn("archive search config failed", "applicationId", appID, "err", err)
		}
	}

	payload := map[string]string{
		"type":          event.TopicCardMoved,
		"applicationId": appID,
		"userId":        userID,
		"from":          string(currentStatus),
		"to":            string(newStatus),
	}
	if err := s.events.Publish(ctx, event.TopicCardMoved, payload); err != nil {
		slog.Warn("publish EVENT_CARD_MOVED failed", "applicationId", appID, "err", err)
	}

	return app, nil
}

// AddNote sets or replaces the free-text note on an application.
func (s *Service) AddNote(ctx context.Context, userID, appID, note string) (*model.Application, error) {
	return s.store.SetNote(ctx, userID, appID, note)
}

// RateApplication sets a 1–5 star rating on an application. The range is
// checked before any storage access.
func (s *Service) RateApplication(ctx context.Context, userID, appID string, rating int) (*model.Application, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Validationf("rating must be between 1 and 5")
	}
	return s.store.SetRating(ctx, userID, appID, rating)
}

// SetReminder sets the follow-up reminder timestamp on an application.
func (s *Service) SetReminder(ctx context.Context, userID, appID string, remindAt time.Time) (*model.Application, error) {
	return s.store.SetReminder(ctx, userID, appID, remindAt)
}
