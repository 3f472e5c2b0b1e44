package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"inkwell/api/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, username, email, password_hash, role, refresh_tokens, reset_token_hash, reset_token_expires, created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, username, email, password_hash, role, refresh_tokens, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.RefreshTokens,
	)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`

	var taken bool
	if err := r.db.QueryRow(ctx, query, username, email).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

// UpdateRefreshTokens replaces the stored refresh-token slice wholesale.
// This is the rotation save path: it touches nothing but the token column,
// and the last concurrent writer wins.
func (r *UserRepository) UpdateRefreshTokens(ctx context.Context, id string, tokens []string) error {
	const query = `UPDATE users SET refresh_tokens = $2, updated_at = NOW() WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id, tokens)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id string, hash string, expires time.Time) error {
	const query = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires = $3, updated_at = NOW()
		WHERE id = $1
	`

	cmd, err := r.db.Exec(ctx, query, id, hash, expires)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// FindByLiveResetToken matches a stored reset-token hash that has not yet
// expired. Wrong hash and expired hash are indistinguishable to the caller.
func (r *UserRepository) FindByLiveResetToken(ctx context.Context, hash string, now time.Time) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1 AND reset_token_expires > $2`
	return r.scanUser(r.db.QueryRow(ctx, query, hash, now))
}

// UpdatePassword stores a new password hash and clears the reset-token
// fields in the same statement, which is what makes a reset token single use.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	const query = `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL, reset_token_expires = NULL, updated_at = NOW()
		WHERE id = $1
	`

	cmd, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires = NULL, updated_at = NOW()
		WHERE reset_token_expires IS NOT NULL AND reset_token_expires <= $1
	`

	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *UserRepository) scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.RefreshTokens,
		&user.ResetTokenHash,
		&user.ResetTokenExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
