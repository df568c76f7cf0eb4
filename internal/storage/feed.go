package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"jobtrail/core-service/internal/apperr"
	"jobtrail/core-service/internal/model"
)

const feedColumns = `id, user_id, COALESCE(search_config_id::text, ''), source_url, status,
       raw_data, is_manual, created_at, expires_at`

func scanFeedItem(row pgx.Row) (*model.JobFeedItem, error) {
	var f model.JobFeedItem
	err := row.Scan(
		&f.ID, &f.UserID, &f.SearchConfigID, &f.SourceURL, &f.Status,
		&f.RawData, &f.IsManual, &f.CreatedAt, &f.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// InsertPending lands a discovered listing in the feed unless its
// source_url is already present. The conditional insert is one statement
// riding the unique constraint, so concurrent ingestors cannot both
// insert; the duplicate classification is derived from whether a row came
// back.
func (s *Store) InsertPending(ctx context.Context, userID string, configID *string, job model.JobListing, expiresAt time.Time) (string, bool, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return "", false, fmt.Errorf("marshal listing: %w", err)
	}

	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO job_feed (user_id, search_config_id, source_url, status, raw_data, is_manual, expires_at)
		 VALUES ($1, $2, $3, 'PENDING', $4::jsonb, FALSE, $5)
		 ON CONFLICT (source_url) DO NOTHING
		 RETURNING id`,
		userID, configID, job.SourceURL, raw, expiresAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil // duplicate
	}
	if err != nil {
		return "", false, apperr.Transient("insert job_feed", err)
	}
	return id, true, nil
}

// InsertManual adds a user-entered posting to the inbox under a
// synthesized manual:// dedup key. Returns false when the same posting is
// already filed.
func (s *Store) InsertManual(ctx context.Context, userID string, configID *string, sourceURL string, raw json.RawMessage, expiresAt time.Time) (string, bool, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO job_feed (user_id, search_config_id, source_url, status, raw_data, is_manual, expires_at)
		 VALUES ($1, $2, $3, 'PENDING', $4::jsonb, TRUE, $5)
		 ON CONFLICT (source_url) DO NOTHING
		 RETURNING id`,
		userID, configID, sourceURL, raw, expiresAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Transient("insert manual job_feed", err)
	}
	return id, true, nil
}

// ListPendingFeed returns the caller's unexpired PENDING items, newest
// first. Expired rows are an external sweep's problem; they are merely
// hidden here.
func (s *Store) ListPendingFeed(ctx context.Context, userID string) ([]model.JobFeedItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+feedColumns+`
		 FROM job_feed
		 WHERE user_id = $1 AND status = 'PENDING' AND expires_at > NOW()
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, apperr.Transient("query job_feed", err)
	}
	defer rows.Close()

	items := make([]model.JobFeedItem, 0)
	for rows.Next() {
		f, err := scanFeedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job_feed: %w", err)
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// GetFeedItem returns a feed item scoped by (id, owner).
func (s *Store) GetFeedItem(ctx context.Context, userID, feedID string) (*model.JobFeedItem, error) {
	f, err := scanFeedItem(s.pool.QueryRow(ctx,
		`SELECT `+feedColumns+` FROM job_feed WHERE id = $1 AND user_id = $2`,
		feedID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("get job_feed", err)
	}
	return f, nil
}

// SwapFeedStatus flips a feed item's triage status in one conditional
// update. ErrNotFound covers both a missing/not-owned row and a row no
// longer at `from`.
func (s *Store) SwapFeedStatus(ctx context.Context, userID, feedID, from, to string) (*model.JobFeedItem, error) {
	f, err := scanFeedItem(s.pool.QueryRow(ctx,
		`UPDATE job_feed
		 SET status = $1
		 WHERE id = $2 AND user_id = $3 AND status = $4
		 RETURNING `+feedColumns,
		to, feedID, userID, from))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("update job_feed status", err)
	}
	return f, nil
}
