package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"inkwell/api/internal/models"
)

var ErrArticleNotFound = errors.New("article not found")

const articleColumns = `
	a.id, a.title, a.content, a.author_id, a.tags, a.published_date,
	a.is_published, a.views, a.created_at, a.updated_at,
	u.username, u.email`

type ArticleRepository struct {
	db DB
}

func NewArticleRepository(db DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(ctx context.Context, article models.Article) error {
	const query = `
		INSERT INTO articles (
			id, title, content, author_id, tags, published_date, is_published, views, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.AuthorID,
		article.Tags,
		article.PublishedDate,
		article.IsPublished,
		article.Views,
	)
	return err
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (models.Article, error) {
	const query = `
		SELECT ` + articleColumns + `
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE a.id = $1
	`
	return r.scanArticle(r.db.QueryRow(ctx, query, id))
}

// List returns a page of articles newest-first, optionally narrowed by a
// case-insensitive title match, together with the total match count.
func (r *ArticleRepository) List(ctx context.Context, filter ArticleFilter) ([]models.Article, int, error) {
	const countQuery = `
		SELECT COUNT(*) FROM articles a
		WHERE ($1 = '' OR a.title ILIKE '%' || $1 || '%')
	`

	var total int
	if err := r.db.QueryRow(ctx, countQuery, filter.Title).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT ` + articleColumns + `
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE ($1 = '' OR a.title ILIKE '%' || $1 || '%')
		ORDER BY a.published_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, filter.Title, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		article, err := r.scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
	}
	return articles, total, rows.Err()
}

func (r *ArticleRepository) Update(ctx context.Context, article models.Article) error {
	const query = `
		UPDATE articles
		SET title = $2, content = $3, tags = $4, updated_at = NOW()
		WHERE id = $1
	`

	cmd, err := r.db.Exec(ctx, query, article.ID, article.Title, article.Content, article.Tags)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM articles WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) SetPublished(ctx context.Context, id string, published bool) error {
	const query = `UPDATE articles SET is_published = $2, updated_at = NOW() WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id, published)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// AddViews folds accumulated view counts into the articles table. Rows that
// vanished since counting are skipped silently.
func (r *ArticleRepository) AddViews(ctx context.Context, counts map[string]int64) error {
	const query = `UPDATE articles SET views = views + $2 WHERE id = $1`

	for id, n := range counts {
		if n <= 0 {
			continue
		}
		if _, err := r.db.Exec(ctx, query, id, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *ArticleRepository) scanArticle(row pgx.Row) (models.Article, error) {
	var article models.Article
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.AuthorID,
		&article.Tags,
		&article.PublishedDate,
		&article.IsPublished,
		&article.Views,
		&article.CreatedAt,
		&article.UpdatedAt,
		&article.Author.Username,
		&article.Author.Email,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Article{}, ErrArticleNotFound
		}
		return models.Article{}, err
	}
	article.Author.ID = article.AuthorID
	return article, nil
}
