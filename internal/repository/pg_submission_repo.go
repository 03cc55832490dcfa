package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenantkyc/kycdesk/internal/models"
)

const submissionColumns = `id, form_id, submitted_at, status, data, recommendation_note,
	recommended_at, landlord_phone, landlord_email, archived, archived_at, updated_at`

type PgSubmissionRepo struct {
	pool *pgxpool.Pool
}

var _ SubmissionRepository = (*PgSubmissionRepo)(nil)

func NewPgSubmissionRepo(pool *pgxpool.Pool) *PgSubmissionRepo {
	return &PgSubmissionRepo{pool: pool}
}

// EnsureSchema creates the submissions table. seq preserves insertion order
// for listings since ids are random.
func (r *PgSubmissionRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kyc_submissions (
			seq                 BIGSERIAL,
			id                  TEXT PRIMARY KEY,
			form_id             TEXT NOT NULL,
			submitted_at        TEXT NOT NULL,
			status              TEXT NOT NULL,
			data                JSONB NOT NULL DEFAULT '{}',
			recommendation_note TEXT,
			recommended_at      TEXT,
			landlord_phone      TEXT NOT NULL DEFAULT '',
			landlord_email      TEXT NOT NULL DEFAULT '',
			archived            BOOLEAN NOT NULL DEFAULT FALSE,
			archived_at         TEXT NOT NULL DEFAULT '',
			updated_at          TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS kyc_submissions_form_idx ON kyc_submissions (form_id, archived, seq);`)
	return err
}

const insertSubmission = `INSERT INTO kyc_submissions (` + submissionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (r *PgSubmissionRepo) Create(ctx context.Context, sub *models.Submission) error {
	ensureID(&sub.ID)
	args, err := submissionArgs(sub)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertSubmission, args...)
	return err
}

// CreateWithinCap serialises inserts per form with a transaction-scoped
// advisory lock, so the count it reads cannot go stale before the insert.
func (r *PgSubmissionRepo) CreateWithinCap(ctx context.Context, sub *models.Submission, limit int) error {
	ensureID(&sub.ID)
	args, err := submissionArgs(sub)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, sub.FormID); err != nil {
			return err
		}
		if limit > 0 {
			var n int
			err := tx.QueryRow(ctx, `SELECT count(*) FROM kyc_submissions WHERE form_id = $1`, sub.FormID).Scan(&n)
			if err != nil {
				return err
			}
			if n >= limit {
				return ErrLimitReached
			}
		}
		_, err := tx.Exec(ctx, insertSubmission, args...)
		return err
	})
}

func (r *PgSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+submissionColumns+` FROM kyc_submissions WHERE id = $1`, id)
	return firstSubmission(rows, err)
}

func (r *PgSubmissionRepo) FindByFormID(ctx context.Context, formID string, archived bool) ([]models.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM kyc_submissions
		 WHERE form_id = $1 AND archived = $2 ORDER BY seq`, formID, archived)
	if err != nil {
		return nil, err
	}
	return collectSubmissions(rows)
}

func (r *PgSubmissionRepo) SetStatus(ctx context.Context, formID, id string, status models.Status, updatedAt string) (*models.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE kyc_submissions SET status = $3, updated_at = $4
		 WHERE form_id = $1 AND id = $2
		 RETURNING `+submissionColumns, formID, id, string(status), updatedAt)
	return firstSubmission(rows, err)
}

func (r *PgSubmissionRepo) SetRecommendation(ctx context.Context, formID, id string, rec models.Recommendation, updatedAt string) (*models.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE kyc_submissions SET recommendation_note = $3, recommended_at = $4, updated_at = $5
		 WHERE form_id = $1 AND id = $2 AND NOT archived
		 RETURNING `+submissionColumns, formID, id, rec.Note, rec.RecommendedAt, updatedAt)
	return firstSubmission(rows, err)
}

func (r *PgSubmissionRepo) Archive(ctx context.Context, formID string, ids []string, archivedAt string) ([]models.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`WITH moved AS (
			UPDATE kyc_submissions SET archived = TRUE, archived_at = $3, updated_at = $3
			WHERE form_id = $1 AND id = ANY($2) AND NOT archived
			RETURNING seq, `+submissionColumns+`
		)
		SELECT `+submissionColumns+` FROM moved ORDER BY seq`, formID, ids, archivedAt)
	if err != nil {
		return nil, err
	}
	return collectSubmissions(rows)
}

func (r *PgSubmissionRepo) DeleteByFormID(ctx context.Context, formID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM kyc_submissions WHERE form_id = $1`, formID)
	return err
}

func (r *PgSubmissionRepo) CountByFormID(ctx context.Context, formID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM kyc_submissions WHERE form_id = $1`, formID).Scan(&n)
	return n, err
}

func (r *PgSubmissionRepo) CountByStatus(ctx context.Context, formIDs []string) (map[models.Status]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, count(*) FROM kyc_submissions WHERE form_id = ANY($1) GROUP BY status`, formIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[models.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.Status(status)] = n
	}
	return counts, rows.Err()
}

func submissionArgs(s *models.Submission) ([]any, error) {
	data, err := json.Marshal(s.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal submission data: %w", err)
	}
	var note, notedAt *string
	if s.Recommendation != nil {
		note, notedAt = &s.Recommendation.Note, &s.Recommendation.RecommendedAt
	}
	return []any{
		s.ID, s.FormID, s.SubmittedAt, string(s.Status), data, note, notedAt,
		s.LandlordPhone, s.LandlordEmail, s.Archived, s.ArchivedAt, s.UpdatedAt,
	}, nil
}

// firstSubmission returns the single row of a keyed query or ErrNotFound.
func firstSubmission(rows pgx.Rows, err error) (*models.Submission, error) {
	if err != nil {
		return nil, err
	}
	subs, err := collectSubmissions(rows)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ErrNotFound
	}
	return &subs[0], nil
}

func collectSubmissions(rows pgx.Rows) ([]models.Submission, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Submission, error) {
		var (
			s             models.Submission
			status        string
			data          []byte
			note, notedAt *string
		)
		err := row.Scan(&s.ID, &s.FormID, &s.SubmittedAt, &status, &data, &note, &notedAt,
			&s.LandlordPhone, &s.LandlordEmail, &s.Archived, &s.ArchivedAt, &s.UpdatedAt)
		if err != nil {
			return s, err
		}
		s.Status = models.Status(status)
		if err := json.Unmarshal(data, &s.Data); err != nil {
			return s, fmt.Errorf("unmarshal submission data: %w", err)
		}
		if note != nil {
			s.Recommendation = &models.Recommendation{Note: *note}
			if notedAt != nil {
				s.Recommendation.RecommendedAt = *notedAt
			}
		}
		return s, nil
	})
}
