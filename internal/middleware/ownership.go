package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/api/internal/models"
	"inkwell/api/internal/repository"
)

const articleContextKey = "article"

// ArticleOwnerOrAdmin fetches the target article fresh and passes only the
// article's author or an admin. Missing articles 404 before any permission
// verdict. The fetched article is stashed for the handler.
func ArticleOwnerOrAdmin(articles repository.ArticleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		article, err := articles.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, repository.ErrArticleNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Article not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error checking resource ownership"})
			return
		}

		if models.Role(claims.Role) != models.RoleAdmin && article.AuthorID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You don't have permission to perform this action"})
			return
		}

		c.Set(articleContextKey, article)
		c.Next()
	}
}

// ArticleFrom returns the article fetched by ArticleOwnerOrAdmin.
func ArticleFrom(c *gin.Context) (models.Article, bool) {
	val, exists := c.Get(articleContextKey)
	if !exists {
		return models.Article{}, false
	}
	article, ok := val.(models.Article)
	return article, ok
}
