package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"jobtrail/core-service/internal/apperr"
	"jobtrail/core-service/internal/kanban"
	"jobtrail/core-service/internal/model"
)

// appColumns selects an application joined to its feed item so callers
// get the linked search config id without a second round trip.
const appColumns = `%[1]s.id, %[1]s.user_id, %[1]s.current_status, %[1]s.ai_analysis,
       %[1]s.generated_cover_letter, %[1]s.user_notes, %[1]s.user_rating, %[1]s.history_log,
       COALESCE(%[1]s.job_feed_id::text, ''), COALESCE(jf.search_config_id::text, ''),
       %[1]s.reminder_at, %[1]s.created_at, %[1]s.updated_at`

func appSelect(alias string) string {
	return fmt.Sprintf(appColumns, alias)
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	err := row.Scan(
		&a.ID, &a.UserID, &a.CurrentStatus, &a.AIAnalysis,
		&a.GeneratedCoverLetter, &a.UserNotes, &a.UserRating, &a.HistoryLog,
		&a.JobFeedID, &a.SearchConfigID,
		&a.ReminderAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetApplication returns an application scoped by (id, owner).
func (s *Store) GetApplication(ctx context.Context, userID, appID string) (*model.Application, error) {
	a, err := scanApplication(s.pool.QueryRow(ctx,
		`SELECT `+appSelect("a")+`
		 FROM applications a
		 LEFT JOIN job_feed jf ON jf.id = a.job_feed_id
		 WHERE a.id = $1 AND a.user_id = $2`,
		appID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("get application", err)
	}
	return a, nil
}

// ListApplications returns the owner's applications, newest first,
// optionally filtered by status.
func (s *Store) ListApplications(ctx context.Context, userID, statusFilter string) ([]model.Application, error) {
	base := `SELECT ` + appSelect("a") + `
		 FROM applications a
		 LEFT JOIN job_feed jf ON jf.id = a.job_feed_id
		 WHERE a.user_id = $1`

	var (
		rows pgx.Rows
		err  error
	)
	if statusFilter != "" {
		rows, err = s.pool.Query(ctx, base+` AND a.current_status = $2::application_status ORDER BY a.updated_at DESC`, userID, statusFilter)
	} else {
		rows, err = s.pool.Query(ctx, base+` ORDER BY a.updated_at DESC`, userID)
	}
	if err != nil {
		return nil, apperr.Transient("query applications", err)
	}
	defer rows.Close()

	apps := make([]model.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// CreateApplication inserts a new application at the initial status. The
// (user_id, job_feed_id) unique constraint makes creation idempotent: on
// conflict only updated_at is touched and the existing row comes back.
// A job_feed_id that does not belong to userID inserts nothing and
// yields ErrNotFound.
func (s *Store) CreateApplication(ctx context.Context, userID string, jobFeedID *string, initial kanban.Status) (*model.Application, error) {
	a, err := scanApplication(s.pool.QueryRow(ctx,
		`WITH ins AS (
		   INSERT INTO applications (user_id, job_feed_id, current_status)
		   SELECT $1, $2, $3::application_status
		   WHERE $2::uuid IS NULL
		      OR EXISTS (SELECT 1 FROM job_feed WHERE id = $2 AND user_id = $1)
		   ON CONFLICT (user_id, job_feed_id) DO UPDATE SET updated_at = NOW()
		   RETURNING *
		 )
		 SELECT `+appSelect("ins")+`
		 FROM ins
		 LEFT JOIN job_feed jf ON jf.id = ins.job_feed_id`,
		userID, jobFeedID, string(initial)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("insert application", err)
	}
	return a, nil
}

// SwapStatus performs the transition commit: new status, one appended
// history record and a fresh updated_at, in a single UPDATE conditioned
// on the row still being at `from`. A concurrent mover makes the WHERE
// clause miss and the caller gets ErrNotFound instead of a double append.
func (s *Store) SwapStatus(ctx context.Context, userID, appID string, from, to kanban.Status, rec model.TransitionRecord) (*model.Application, error) {
	entry, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal history entry: %w", err)
	}

	a, err := scanApplication(s.pool.QueryRow(ctx,
		`WITH upd AS (
		   UPDATE applications
		   SET current_status = $1::application_status,
		       history_log    = history_log || $2::jsonb,
		       updated_at     = NOW()
		   WHERE id = $3 AND user_id = $4 AND current_status = $5::application_status
		   RETURNING *
		 )
		 SELECT `+appSelect("upd")+`
		 FROM upd
		 LEFT JOIN job_feed jf ON jf.id = upd.job_feed_id`,
		string(to), fmt.Sprintf("[%s]", entry), appID, userID, string(from)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("update application status", err)
	}
	return a, nil
}

func (s *Store) updateApplication(ctx context.Context, set string, args ...any) (*model.Application, error) {
	a, err := scanApplication(s.pool.QueryRow(ctx,
		`WITH upd AS (
		   UPDATE applications SET `+set+`, updated_at = NOW()
		   WHERE id = $2 AND user_id = $3
		   RETURNING *
		 )
		 SELECT `+appSelect("upd")+`
		 FROM upd
		 LEFT JOIN job_feed jf ON jf.id = upd.job_feed_id`,
		args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("update application", err)
	}
	return a, nil
}

// SetNote replaces the free-text note.
func (s *Store) SetNote(ctx context.Context, userID, appID, note string) (*model.Application, error) {
	return s.updateApplication(ctx, `user_notes = $1`, note, appID, userID)
}

// SetRating replaces the star rating. Range is validated by the caller.
func (s *Store) SetRating(ctx context.Context, userID, appID string, rating int) (*model.Application, error) {
	return s.updateApplication(ctx, `user_rating = $1`, rating, appID, userID)
}

// SetReminder replaces the follow-up reminder timestamp.
func (s *Store) SetReminder(ctx context.Context, userID, appID string, remindAt time.Time) (*model.Application, error) {
	return s.updateApplication(ctx, `reminder_at = $1`, remindAt, appID, userID)
}

// ArchiveConfigForApplication deactivates the search config reachable
// through the application's feed item. Manual applications have no feed
// link and are skipped silently.
func (s *Store) ArchiveConfigForApplication(ctx context.Context, appID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE search_configs sc
		 SET is_active  = false,
		     updated_at = NOW()
		 FROM applications a
		 LEFT JOIN job_feed jf ON jf.id = a.job_feed_id
		 WHERE a.id = $1
		   AND jf.search_config_id IS NOT NULL
		   AND sc.id = jf.search_config_id
		   AND sc.user_id = a.user_id`,
		appID)
	if err != nil {
		return apperr.Transient("archive search_config", err)
	}
	return nil
}
