package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenantkyc/kycdesk/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type PgUserRepo struct {
	pool *pgxpool.Pool
}

var _ UserRepository = (*PgUserRepo)(nil)

func NewPgUserRepo(pool *pgxpool.Pool) *PgUserRepo {
	return &PgUserRepo{pool: pool}
}

func (r *PgUserRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kyc_users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL,
			phone         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL,
			role          TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);
		ALTER TABLE kyc_users ADD COLUMN IF NOT EXISTS phone TEXT NOT NULL DEFAULT '';
		CREATE UNIQUE INDEX IF NOT EXISTS kyc_users_email_idx ON kyc_users (lower(email));`)
	return err
}

func (r *PgUserRepo) Create(ctx context.Context, user *models.User) error {
	ensureID(&user.ID)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO kyc_users (id, email, phone, password_hash, name, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Phone, user.PasswordHash, user.Name, user.Role, user.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *PgUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *PgUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *PgUserRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM kyc_users ORDER BY created_at, lower(email)`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := scanUser(row, &u)
		return u, err
	})
}

const userColumns = `id, email, phone, password_hash, name, role, created_at`

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt)
}

func (r *PgUserRepo) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM kyc_users `+where, arg), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
