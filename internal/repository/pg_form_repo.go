package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenantkyc/kycdesk/internal/models"
)

const formColumns = `id, owner_id, title, editor_type, template_id, apartment_name, apartment_address,
	fields, is_active, expiration_days, submission_cap, created_at, updated_at`

type PgFormRepo struct {
	pool *pgxpool.Pool
}

var _ FormRepository = (*PgFormRepo)(nil)

func NewPgFormRepo(pool *pgxpool.Pool) *PgFormRepo {
	return &PgFormRepo{pool: pool}
}

func (r *PgFormRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kyc_forms (
			id                TEXT PRIMARY KEY,
			owner_id          TEXT NOT NULL,
			title             TEXT NOT NULL,
			editor_type       TEXT NOT NULL,
			template_id       TEXT NOT NULL DEFAULT '',
			apartment_name    TEXT NOT NULL DEFAULT '',
			apartment_address TEXT NOT NULL DEFAULT '',
			fields            JSONB NOT NULL DEFAULT '[]',
			is_active         BOOLEAN NOT NULL DEFAULT TRUE,
			expiration_days   INTEGER,
			submission_cap    INTEGER,
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS kyc_forms_owner_idx ON kyc_forms (owner_id, created_at);`)
	return err
}

func (r *PgFormRepo) Create(ctx context.Context, form *models.Form) error {
	ensureID(&form.ID)
	fields, err := json.Marshal(form.Fields)
	if err != nil {
		return fmt.Errorf("marshal form fields: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO kyc_forms (`+formColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		form.ID, form.OwnerID, form.Title, string(form.Type), form.TemplateID,
		form.ApartmentName, form.ApartmentAddress, fields, form.IsActive,
		form.ExpirationDays, form.SubmissionCap, form.CreatedAt, form.UpdatedAt)
	return err
}

func (r *PgFormRepo) FindByID(ctx context.Context, id string) (*models.Form, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+formColumns+` FROM kyc_forms WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	forms, err := collectForms(rows)
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return nil, ErrNotFound
	}
	return &forms[0], nil
}

func (r *PgFormRepo) FindByOwner(ctx context.Context, ownerID string) ([]models.Form, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+formColumns+` FROM kyc_forms WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectForms(rows)
}

func (r *PgFormRepo) FindAll(ctx context.Context) ([]models.Form, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+formColumns+` FROM kyc_forms ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return collectForms(rows)
}

func (r *PgFormRepo) Update(ctx context.Context, form *models.Form) error {
	fields, err := json.Marshal(form.Fields)
	if err != nil {
		return fmt.Errorf("marshal form fields: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE kyc_forms SET title = $2, editor_type = $3, template_id = $4,
			apartment_name = $5, apartment_address = $6, fields = $7, is_active = $8,
			expiration_days = $9, submission_cap = $10, updated_at = $11
		 WHERE id = $1`,
		form.ID, form.Title, string(form.Type), form.TemplateID, form.ApartmentName,
		form.ApartmentAddress, fields, form.IsActive, form.ExpirationDays,
		form.SubmissionCap, form.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgFormRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM kyc_forms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgFormRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM kyc_forms`).Scan(&n)
	return n, err
}

func collectForms(rows pgx.Rows) ([]models.Form, error) {
	forms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Form, error) {
		var (
			f      models.Form
			kind   string
			fields []byte
		)
		err := row.Scan(&f.ID, &f.OwnerID, &f.Title, &kind, &f.TemplateID,
			&f.ApartmentName, &f.ApartmentAddress, &fields, &f.IsActive,
			&f.ExpirationDays, &f.SubmissionCap, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return f, err
		}
		f.Type = models.EditorType(kind)
		if err := json.Unmarshal(fields, &f.Fields); err != nil {
			return f, fmt.Errorf("unmarshal form fields: %w", err)
		}
		return f, nil
	})
	return forms, err
}
