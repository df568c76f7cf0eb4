// Package triage promotes or discards items from the job feed inbox.
//
// Approving a PENDING item makes it APPROVED and creates the tracked
// application; rejecting makes it REJECTED with no further side effect.
// Both are idempotent: re-approving yields the same application (the
// (owner, job_feed_id) uniqueness constraint guarantees at most one),
// re-rejecting is a no-op.
package triage

import (
	"context"

	"jobtrail/core-service/internal/apperr"
	"jobtrail/core-service/internal/model"
)

// FeedStore is the slice of feed persistence triage needs.
type FeedStore interface {
	// GetFeedItem returns the item scoped by (id, owner), or apperr.ErrNotFound.
	GetFeedItem(ctx context.Context, userID, feedID string) (*model.JobFeedItem, error)

	// SwapFeedStatus flips the item's status in a single conditional
	// update. Returns apperr.ErrNotFound when no row is at `from` anymore.
	SwapFeedStatus(ctx context.Context, userID, feedID, from, to string) (*model.JobFeedItem, error)
}

// Applications creates the tracked application for an approved item.
type Applications interface {
	CreateApplication(ctx context.Context, userID string, jobFeedID *string) (*model.Application, error)
}

// Service implements the approve/reject operations.
type Service struct {
	feed FeedStore
	apps Applications
}

// NewService returns a configured Service.
func NewService(feed FeedStore, apps Applications) *Service {
	return &Service{feed: feed, apps: apps}
}

// Approve transitions a feed item PENDING→APPROVED and returns the
// application created for it. A second approval of the same item does not
// create a duplicate: creation is idempotent per (owner, feed item).
func (s *Service) Approve(ctx context.Context, userID, feedID string) (*model.Application, error) {
	item, err := s.feed.GetFeedItem(ctx, userID, feedID)
	if err != nil {
		return nil, err
	}

	switch item.Status {
	case model.FeedPending:
		if _, err := s.feed.SwapFeedStatus(ctx, userID, feedID, model.FeedPending, model.FeedApproved); err != nil {
			if apperr.IsNotFound(err) {
				// Lost the race to another approve/reject; re-read below.
				return s.Approve(ctx, userID, feedID)
			}
			return nil, err
		}
	case model.FeedApproved:
		// Already approved — fall through to the idempotent create.
	case model.FeedRejected:
		return nil, apperr.Validationf("job feed item was already rejected")
	default:
		return nil, apperr.Validationf("job feed item is in unexpected state %s", item.Status)
	}

	return s.apps.CreateApplication(ctx, userID, &item.ID)
}

// Reject transitions a feed item PENDING→REJECTED. No application is
// created or touched.
func (s *Service) Reject(ctx context.Context, userID, feedID string) (*model.JobFeedItem, error) {
	item, err := s.feed.GetFeedItem(ctx, userID, feedID)
	if err != nil {
		return nil, err
	}

	switch item.Status {
	case model.FeedPending:
		updated, err := s.feed.SwapFeedStatus(ctx, userID, feedID, model.FeedPending, model.FeedRejected)
		if apperr.IsNotFound(err) {
			return nil, apperr.Validationf("job feed item changed concurrently")
		}
		return updated, err
	case model.FeedRejected:
		return item, nil
	default:
		return nil, apperr.Validationf("job feed item was already approved")
	}
}
