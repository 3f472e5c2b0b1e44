package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/api/internal/models"
)

// DB is the slice of pgxpool.Pool the repositories need. Narrow on purpose:
// pgxmock satisfies it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserStore is the credential store consumed by the auth service.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	UpdateRefreshTokens(ctx context.Context, id string, tokens []string) error
	SetResetToken(ctx context.Context, id string, hash string, expires time.Time) error
	FindByLiveResetToken(ctx context.Context, hash string, now time.Time) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// ArticleStore is the article persistence surface.
type ArticleStore interface {
	Create(ctx context.Context, article models.Article) error
	GetByID(ctx context.Context, id string) (models.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]models.Article, int, error)
	Update(ctx context.Context, article models.Article) error
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	AddViews(ctx context.Context, counts map[string]int64) error
}

// ArticleFilter narrows and pages List results.
type ArticleFilter struct {
	Title  string
	Limit  int
	Offset int
}
