package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/jeevamithra/internal/domain/auth"
)

// Schema creates the account tables when missing.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name     TEXT NOT NULL DEFAULT '',
	phone         TEXT NOT NULL DEFAULT '',
	age           INTEGER NOT NULL DEFAULT 0,
	gender        TEXT NOT NULL DEFAULT '',
	photo_url     TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS user_identities (
	id               BIGSERIAL PRIMARY KEY,
	user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	provider         TEXT NOT NULL,
	provider_subject TEXT NOT NULL,
	provider_email   TEXT NOT NULL DEFAULT '',
	refresh_token    TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (provider, provider_subject)
);`

const userColumns = `id, email, password_hash, full_name, phone, age, gender, photo_url, created_at, updated_at`

const identityColumns = `id, user_id, provider, provider_subject, provider_email, refresh_token, created_at, updated_at`

const uniqueViolation = "23505"

// PostgresRepository persists accounts in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate applies Schema.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, user auth.User) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, phone, age, gender, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+userColumns,
		user.Email, user.PasswordHash, user.FullName, user.Phone, user.Age, user.Gender, user.PhotoURL, user.CreatedAt, user.UpdatedAt)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, err
	}
	return created, nil
}

// Update writes the profile columns.
func (r *PostgresRepository) Update(ctx context.Context, user auth.User) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET full_name = $2, phone = $3, age = $4, gender = $5, photo_url = $6, updated_at = $7
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.FullName, user.Phone, user.Age, user.Gender, user.PhotoURL, user.UpdatedAt)
	updated, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	return updated, err
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id)
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg any) (auth.User, bool, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, nil
}

// GetIdentity returns an identity by provider and subject.
func (r *PostgresRepository) GetIdentity(ctx context.Context, provider, providerSubject string) (auth.Identity, bool, error) {
	return r.getIdentity(ctx, `SELECT `+identityColumns+` FROM user_identities WHERE provider = $1 AND provider_subject = $2`, provider, providerSubject)
}

// GetIdentityByUser returns the user's identity with provider.
func (r *PostgresRepository) GetIdentityByUser(ctx context.Context, userID int64, provider string) (auth.Identity, bool, error) {
	return r.getIdentity(ctx, `SELECT `+identityColumns+` FROM user_identities WHERE user_id = $1 AND provider = $2 ORDER BY id LIMIT 1`, userID, provider)
}

func (r *PostgresRepository) getIdentity(ctx context.Context, query string, args ...any) (auth.Identity, bool, error) {
	identity, err := scanIdentity(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Identity{}, false, nil
	}
	if err != nil {
		return auth.Identity{}, false, err
	}
	return identity, true, nil
}

// UpsertIdentity inserts the link or refreshes its token and email.
func (r *PostgresRepository) UpsertIdentity(ctx context.Context, identity auth.Identity) (auth.Identity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_identities (user_id, provider, provider_subject, provider_email, refresh_token)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider, provider_subject) DO UPDATE SET
			provider_email = COALESCE(NULLIF(EXCLUDED.provider_email, ''), user_identities.provider_email),
			refresh_token  = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), user_identities.refresh_token),
			updated_at     = now()
		RETURNING `+identityColumns,
		identity.UserID, identity.Provider, identity.ProviderSubject, identity.ProviderEmail, identity.RefreshToken)
	return scanIdentity(row)
}

func scanUser(row pgx.Row) (auth.User, error) {
	var u auth.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Age, &u.Gender, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return auth.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func scanIdentity(row pgx.Row) (auth.Identity, error) {
	var i auth.Identity
	if err := row.Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderSubject, &i.ProviderEmail, &i.RefreshToken, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return auth.Identity{}, err
	}
	return i, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)
