package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/api/internal/apperrors"
	"inkwell/api/internal/models"
	"inkwell/api/internal/repository"
)

type mockArticleStore struct {
	mock.Mock
}

func (m *mockArticleStore) Create(ctx context.Context, article models.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *mockArticleStore) GetByID(ctx context.Context, id string) (models.Article, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Article), args.Error(1)
}

func (m *mockArticleStore) List(ctx context.Context, filter repository.ArticleFilter) ([]models.Article, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Article), args.Int(1), args.Error(2)
}

func (m *mockArticleStore) Update(ctx context.Context, article models.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *mockArticleStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockArticleStore) SetPublished(ctx context.Context, id string, published bool) error {
	args := m.Called(ctx, id, published)
	return args.Error(0)
}

func (m *mockArticleStore) AddViews(ctx context.Context, counts map[string]int64) error {
	args := m.Called(ctx, counts)
	return args.Error(0)
}

func newArticleService() (*ArticleService, *mockArticleStore) {
	store := &mockArticleStore{}
	return NewArticleService(store, nil, zerolog.Nop()), store
}

func draftArticle() models.Article {
	return models.Article{
		ID:       "art-1",
		Title:    "Go in Anger",
		Content:  "A field guide.",
		AuthorID: "u-alice",
		Tags:     []string{"go"},
		Author:   models.AuthorRef{ID: "u-alice", Username: "alice", Email: "a@x.com"},
	}
}

func TestArticleCreate_Success(t *testing.T) {
	svc, store := newArticleService()

	var created models.Article
	store.On("Create", mock.Anything, mock.MatchedBy(func(a models.Article) bool {
		created = a
		return a.Title == "Go in Anger" && a.AuthorID == "u-alice" && !a.IsPublished && a.ID != ""
	})).Return(nil)
	store.On("GetByID", mock.Anything, mock.Anything).
		Return(draftArticle(), nil)

	got, err := svc.Create(context.Background(), "u-alice", CreateArticleInput{
		Title:   "Go in Anger",
		Content: "A field guide.",
		Tags:    []string{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Author.Username)
	assert.False(t, created.IsPublished, "new articles start as drafts")
	store.AssertExpectations(t)
}

func TestArticleCreate_NilTagsBecomeEmpty(t *testing.T) {
	svc, store := newArticleService()

	store.On("Create", mock.Anything, mock.MatchedBy(func(a models.Article) bool {
		return a.Tags != nil && len(a.Tags) == 0
	})).Return(nil)
	store.On("GetByID", mock.Anything, mock.Anything).Return(draftArticle(), nil)

	_, err := svc.Create(context.Background(), "u-alice", CreateArticleInput{
		Title: "t", Content: "c",
	})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestArticleCreate_MissingFields(t *testing.T) {
	svc, _ := newArticleService()

	_, err := svc.Create(context.Background(), "u-alice", CreateArticleInput{Title: "only title"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.Create(context.Background(), "u-alice", CreateArticleInput{Content: "only content"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestArticleGet_NotFound(t *testing.T) {
	svc, store := newArticleService()

	store.On("GetByID", mock.Anything, "missing").
		Return(models.Article{}, repository.ErrArticleNotFound)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestArticleList_ClampsAndPaginates(t *testing.T) {
	svc, store := newArticleService()

	store.On("List", mock.Anything, repository.ArticleFilter{Title: "go", Limit: 10, Offset: 0}).
		Return([]models.Article{draftArticle()}, 23, nil)

	articles, pg, err := svc.List(context.Background(), ListArticlesInput{Page: 0, Limit: -5, Title: "go"})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 10, pg.Limit)
	assert.Equal(t, 23, pg.Total)
	assert.Equal(t, 3, pg.TotalPages)
	store.AssertExpectations(t)
}

func TestArticleList_OffsetFromPage(t *testing.T) {
	svc, store := newArticleService()

	store.On("List", mock.Anything, repository.ArticleFilter{Limit: 5, Offset: 10}).
		Return([]models.Article(nil), 10, nil)

	articles, pg, err := svc.List(context.Background(), ListArticlesInput{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.NotNil(t, articles, "nil result must serialize as an empty list")
	assert.Equal(t, 2, pg.TotalPages)
	store.AssertExpectations(t)
}

func TestArticleUpdate_MergesNonEmptyFields(t *testing.T) {
	svc, store := newArticleService()
	existing := draftArticle()

	var updated models.Article
	store.On("Update", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { updated = args.Get(1).(models.Article) }).
		Return(nil)
	store.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)

	_, err := svc.Update(context.Background(), existing, UpdateArticleInput{Title: "New Title"})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, existing.Content, updated.Content, "empty input fields keep existing values")
	assert.Equal(t, existing.Tags, updated.Tags)
}

func TestArticleUpdate_NotFound(t *testing.T) {
	svc, store := newArticleService()

	store.On("Update", mock.Anything, mock.Anything).Return(repository.ErrArticleNotFound)

	_, err := svc.Update(context.Background(), draftArticle(), UpdateArticleInput{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestArticleDelete_NotFound(t *testing.T) {
	svc, store := newArticleService()

	store.On("Delete", mock.Anything, "missing").Return(repository.ErrArticleNotFound)

	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestArticleTogglePublish_FlipsFlag(t *testing.T) {
	svc, store := newArticleService()
	existing := draftArticle()

	store.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	store.On("SetPublished", mock.Anything, existing.ID, true).Return(nil)

	got, err := svc.TogglePublish(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublished)
	store.AssertExpectations(t)
}

func TestFlushViews_NoCacheIsNoop(t *testing.T) {
	svc, store := newArticleService()

	require.NoError(t, svc.FlushViews(context.Background()))
	store.AssertNotCalled(t, "AddViews", mock.Anything, mock.Anything)
}
