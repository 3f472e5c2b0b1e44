package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/api/internal/models"
)

func newUserFixture(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func sampleUser() models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return models.User{
		ID:            "u-alice",
		Username:      "alice",
		Email:         "a@x.com",
		PasswordHash:  []byte("$2a$10$hash"),
		Role:          models.RoleAuthor,
		RefreshTokens: []string{"tok-1", "tok-2"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func userRows(u models.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "email", "password_hash", "role", "refresh_tokens",
		"reset_token_hash", "reset_token_expires", "created_at", "updated_at",
	}).AddRow(
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.RefreshTokens,
		u.ResetTokenHash, u.ResetTokenExpires, u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newUserFixture(t)
	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.RefreshTokens).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByUsername(t *testing.T) {
	repo, mock := newUserFixture(t)
	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE username =").
		WithArgs(u.Username).
		WillReturnRows(userRows(u))

	got, err := repo.FindByUsername(context.Background(), u.Username)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.RefreshTokens, got.RefreshTokens)
	assert.Nil(t, got.ResetTokenHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByUsername_NotFound(t *testing.T) {
	repo, mock := newUserFixture(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username =").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UsernameOrEmailTaken(t *testing.T) {
	repo, mock := newUserFixture(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("alice", "a@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.UsernameOrEmailTaken(context.Background(), "alice", "a@x.com")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRefreshTokens(t *testing.T) {
	repo, mock := newUserFixture(t)
	tokens := []string{"live-1", "fresh-2"}

	mock.ExpectExec("UPDATE users SET refresh_tokens =").
		WithArgs("u-alice", tokens).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateRefreshTokens(context.Background(), "u-alice", tokens))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRefreshTokens_UserGone(t *testing.T) {
	repo, mock := newUserFixture(t)

	mock.ExpectExec("UPDATE users SET refresh_tokens =").
		WithArgs("u-gone", []string{"t"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateRefreshTokens(context.Background(), "u-gone", []string{"t"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetResetToken(t *testing.T) {
	repo, mock := newUserFixture(t)
	expires := time.Now().Add(time.Hour)

	mock.ExpectExec("UPDATE users").
		WithArgs("u-alice", "hash-abc", expires).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetResetToken(context.Background(), "u-alice", "hash-abc", expires))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByLiveResetToken_NoMatch(t *testing.T) {
	repo, mock := newUserFixture(t)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM users WHERE reset_token_hash =").
		WithArgs("hash-abc", now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.FindByLiveResetToken(context.Background(), "hash-abc", now)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_ClearsResetFields(t *testing.T) {
	repo, mock := newUserFixture(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("u-alice", []byte("new-hash")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), "u-alice", []byte("new-hash")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ClearExpiredResetTokens(t *testing.T) {
	repo, mock := newUserFixture(t)
	now := time.Now()

	mock.ExpectExec("UPDATE users").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	cleared, err := repo.ClearExpiredResetTokens(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}
