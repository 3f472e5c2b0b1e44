package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/api/internal/apperrors"
	"inkwell/api/internal/middleware"
	"inkwell/api/internal/models"
	"inkwell/api/internal/service"
)

type authorResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type articleResponse struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Author        authorResponse `json:"author"`
	Tags          []string       `json:"tags"`
	PublishedDate time.Time      `json:"publishedDate"`
	IsPublished   bool           `json:"isPublished"`
	Views         int64          `json:"views"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func toArticleResponse(article models.Article) articleResponse {
	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}
	return articleResponse{
		ID:      article.ID,
		Title:   article.Title,
		Content: article.Content,
		Author: authorResponse{
			ID:       article.Author.ID,
			Username: article.Author.Username,
			Email:    article.Author.Email,
		},
		Tags:          tags,
		PublishedDate: article.PublishedDate,
		IsPublished:   article.IsPublished,
		Views:         article.Views,
		CreatedAt:     article.CreatedAt,
		UpdatedAt:     article.UpdatedAt,
	}
}

func (h HandlerSet) ListArticles(c *gin.Context) {
	input := service.ListArticlesInput{
		Page:  1,
		Limit: 10,
		Title: c.Query("title"),
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil {
			input.Page = v
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			input.Limit = v
		}
	}

	articles, pagination, err := h.articles.List(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]articleResponse, 0, len(articles))
	for _, article := range articles {
		items = append(items, toArticleResponse(article))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Articles retrieved successfully",
		"articles": items,
		"pagination": gin.H{
			"page":       pagination.Page,
			"limit":      pagination.Limit,
			"total":      pagination.Total,
			"totalPages": pagination.TotalPages,
		},
	})
}

func (h HandlerSet) GetArticle(c *gin.Context) {
	article, err := h.articles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Article retrieved successfully",
		"article": toArticleResponse(article),
	})
}

type createArticleRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (h HandlerSet) CreateArticle(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		h.respondError(c, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid request body"))
		return
	}

	article, err := h.articles.Create(c.Request.Context(), claims.UserID, service.CreateArticleInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Article created successfully",
		"article": toArticleResponse(article),
	})
}

type updateArticleRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (h HandlerSet) UpdateArticle(c *gin.Context) {
	article, ok := middleware.ArticleFrom(c)
	if !ok {
		h.respondError(c, apperrors.NotFound("Article not found"))
		return
	}

	var req updateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.BadRequest("Invalid request body"))
		return
	}

	updated, err := h.articles.Update(c.Request.Context(), article, service.UpdateArticleInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Article updated successfully",
		"article": toArticleResponse(updated),
	})
}

func (h HandlerSet) DeleteArticle(c *gin.Context) {
	article, ok := middleware.ArticleFrom(c)
	if !ok {
		h.respondError(c, apperrors.NotFound("Article not found"))
		return
	}

	if err := h.articles.Delete(c.Request.Context(), article.ID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}

func (h HandlerSet) TogglePublish(c *gin.Context) {
	article, err := h.articles.TogglePublish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Article unpublished successfully"
	if article.IsPublished {
		message = "Article published successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"article": toArticleResponse(article),
	})
}
