package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"jobtrail/core-service/internal/apperr"
	"jobtrail/core-service/internal/model"
)

const configColumns = `id, user_id, job_titles, locations, remote_policy, keywords, red_flags,
       salary_min, salary_max, is_active, created_at, updated_at`

func scanConfig(row pgx.Row) (*model.SearchConfig, error) {
	var c model.SearchConfig
	err := row.Scan(
		&c.ID, &c.UserID, &c.JobTitles, &c.Locations, &c.RemotePolicy,
		&c.Keywords, &c.RedFlags, &c.SalaryMin, &c.SalaryMax,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) queryConfigs(ctx context.Context, query string, args ...any) ([]model.SearchConfig, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Transient("query search_configs", err)
	}
	defer rows.Close()

	var configs []model.SearchConfig
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan search_config: %w", err)
		}
		configs = append(configs, *c)
	}
	return configs, rows.Err()
}

// ListActive returns every active search config, across all users.
func (s *Store) ListActive(ctx context.Context) ([]model.SearchConfig, error) {
	return s.queryConfigs(ctx,
		`SELECT `+configColumns+` FROM search_configs WHERE is_active = true`)
}

// ListActiveForUser returns one user's active search configs.
func (s *Store) ListActiveForUser(ctx context.Context, userID string) ([]model.SearchConfig, error) {
	return s.queryConfigs(ctx,
		`SELECT `+configColumns+` FROM search_configs WHERE is_active = true AND user_id = $1`,
		userID)
}

// ListConfigs returns all of a user's configs, newest first.
func (s *Store) ListConfigs(ctx context.Context, userID string) ([]model.SearchConfig, error) {
	return s.queryConfigs(ctx,
		`SELECT `+configColumns+` FROM search_configs WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
}

// GetConfig returns a config scoped by (id, owner).
func (s *Store) GetConfig(ctx context.Context, userID, configID string) (*model.SearchConfig, error) {
	c, err := scanConfig(s.pool.QueryRow(ctx,
		`SELECT `+configColumns+` FROM search_configs WHERE id = $1 AND user_id = $2`,
		configID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("get search_config", err)
	}
	return c, nil
}

// CreateConfig inserts a new active search config for userID.
func (s *Store) CreateConfig(ctx context.Context, userID string, c model.SearchConfig) (*model.SearchConfig, error) {
	created, err := scanConfig(s.pool.QueryRow(ctx,
		`INSERT INTO search_configs
		   (user_id, job_titles, locations, remote_policy, keywords, red_flags, salary_min, salary_max)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+configColumns,
		userID, c.JobTitles, c.Locations, c.RemotePolicy,
		c.Keywords, c.RedFlags, c.SalaryMin, c.SalaryMax,
	))
	if err != nil {
		return nil, apperr.Transient("insert search_config", err)
	}
	return created, nil
}

// UpdateConfig applies a partial update: nil slices and nil bounds keep
// the stored value, as does an empty remote policy.
func (s *Store) UpdateConfig(ctx context.Context, userID, configID string, c model.SearchConfig) (*model.SearchConfig, error) {
	updated, err := scanConfig(s.pool.QueryRow(ctx,
		`UPDATE search_configs SET
		   job_titles    = CASE WHEN $3::text[] IS NOT NULL THEN $3 ELSE job_titles END,
		   locations     = CASE WHEN $4::text[] IS NOT NULL THEN $4 ELSE locations END,
		   remote_policy = COALESCE(NULLIF($5, ''), remote_policy),
		   keywords      = CASE WHEN $6::text[] IS NOT NULL THEN $6 ELSE keywords END,
		   red_flags     = CASE WHEN $7::text[] IS NOT NULL THEN $7 ELSE red_flags END,
		   salary_min    = COALESCE($8, salary_min),
		   salary_max    = COALESCE($9, salary_max),
		   updated_at    = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+configColumns,
		configID, userID, c.JobTitles, c.Locations, c.RemotePolicy,
		c.Keywords, c.RedFlags, c.SalaryMin, c.SalaryMax,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("update search_config", err)
	}
	return updated, nil
}

// DeleteConfig removes a config and, via ON DELETE CASCADE, its feed rows.
func (s *Store) DeleteConfig(ctx context.Context, userID, configID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM search_configs WHERE id = $1 AND user_id = $2`,
		configID, userID)
	if err != nil {
		return apperr.Transient("delete search_config", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
