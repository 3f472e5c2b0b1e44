package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"inkwell/api/internal/apperrors"
	"inkwell/api/internal/ids"
	"inkwell/api/internal/models"
	"inkwell/api/internal/repository"
)

// viewCountsKey is the redis hash accumulating article view counts between
// scheduled flushes.
const viewCountsKey = "articles:views"

type ArticleService struct {
	articles repository.ArticleStore
	cache    *redis.Client
	log      zerolog.Logger
}

func NewArticleService(articles repository.ArticleStore, cache *redis.Client, log zerolog.Logger) *ArticleService {
	return &ArticleService{
		articles: articles,
		cache:    cache,
		log:      log,
	}
}

type CreateArticleInput struct {
	Title   string
	Content string
	Tags    []string
}

func (s *ArticleService) Create(ctx context.Context, authorID string, input CreateArticleInput) (models.Article, error) {
	if input.Title == "" || input.Content == "" {
		return models.Article{}, apperrors.BadRequest("Title and content are required")
	}

	article := models.Article{
		ID:            ids.New(),
		Title:         input.Title,
		Content:       input.Content,
		AuthorID:      authorID,
		Tags:          input.Tags,
		PublishedDate: time.Now(),
		IsPublished:   false,
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return models.Article{}, apperrors.Internal("Error while creating article", err)
	}

	return s.get(ctx, article.ID, "Error while creating article")
}

// Get fetches one article and bumps its pending view count. The counter
// lives in redis until the flush job folds it into the articles table, so a
// read never writes to postgres.
func (s *ArticleService) Get(ctx context.Context, id string) (models.Article, error) {
	article, err := s.get(ctx, id, "Error while retrieving the article")
	if err != nil {
		return models.Article{}, err
	}

	if s.cache != nil {
		if err := s.cache.HIncrBy(ctx, viewCountsKey, id, 1).Err(); err != nil {
			s.log.Warn().Err(err).Str("article_id", id).Msg("view count increment failed")
		}
	}

	return article, nil
}

type ListArticlesInput struct {
	Page  int
	Limit int
	Title string
}

type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

func (s *ArticleService) List(ctx context.Context, input ListArticlesInput) ([]models.Article, Pagination, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 || input.Limit > 100 {
		input.Limit = 10
	}

	articles, total, err := s.articles.List(ctx, repository.ArticleFilter{
		Title:  input.Title,
		Limit:  input.Limit,
		Offset: (input.Page - 1) * input.Limit,
	})
	if err != nil {
		return nil, Pagination{}, apperrors.Internal("Error while retrieving articles", err)
	}
	if articles == nil {
		articles = []models.Article{}
	}

	totalPages := total / input.Limit
	if total%input.Limit > 0 {
		totalPages++
	}

	return articles, Pagination{
		Page:       input.Page,
		Limit:      input.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

type UpdateArticleInput struct {
	Title   string
	Content string
	Tags    []string
}

// Update applies the non-empty fields of input onto an already-authorized
// article; ownership was settled by the middleware that fetched it.
func (s *ArticleService) Update(ctx context.Context, article models.Article, input UpdateArticleInput) (models.Article, error) {
	if input.Title != "" {
		article.Title = input.Title
	}
	if input.Content != "" {
		article.Content = input.Content
	}
	if input.Tags != nil {
		article.Tags = input.Tags
	}

	if err := s.articles.Update(ctx, article); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return models.Article{}, apperrors.NotFound("Article not found")
		}
		return models.Article{}, apperrors.Internal("Error while updating article", err)
	}

	return s.get(ctx, article.ID, "Error while updating article")
}

func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return apperrors.NotFound("Article not found")
		}
		return apperrors.Internal("Error while deleting article", err)
	}
	return nil
}

// TogglePublish flips the published flag and returns the updated article.
func (s *ArticleService) TogglePublish(ctx context.Context, id string) (models.Article, error) {
	article, err := s.get(ctx, id, "Error while toggling publish state")
	if err != nil {
		return models.Article{}, err
	}

	if err := s.articles.SetPublished(ctx, id, !article.IsPublished); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return models.Article{}, apperrors.NotFound("Article not found")
		}
		return models.Article{}, apperrors.Internal("Error while toggling publish state", err)
	}

	article.IsPublished = !article.IsPublished
	return article, nil
}

// FlushViews drains the redis view-count hash into the articles table.
// Counts arriving between the read and the delete are lost; view totals are
// best-effort.
func (s *ArticleService) FlushViews(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.HGetAll(ctx, viewCountsKey).Result()
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	if err := s.cache.Del(ctx, viewCountsKey).Err(); err != nil {
		return err
	}

	counts := make(map[string]int64, len(raw))
	for id, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.log.Warn().Str("article_id", id).Str("value", v).Msg("discarding malformed view count")
			continue
		}
		counts[id] = n
	}

	return s.articles.AddViews(ctx, counts)
}

func (s *ArticleService) get(ctx context.Context, id string, internalMsg string) (models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return models.Article{}, apperrors.NotFound("Article not found")
		}
		return models.Article{}, apperrors.Internal(internalMsg, err)
	}
	return article, nil
}
