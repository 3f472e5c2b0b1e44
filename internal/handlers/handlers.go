package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"inkwell/api/internal/config"
	"inkwell/api/internal/middleware"
	"inkwell/api/internal/models"
	"inkwell/api/internal/repository"
	"inkwell/api/internal/service"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	articles *service.ArticleService
	store    repository.ArticleStore
	db       *pgxpool.Pool
	cache    *redis.Client
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	auth *service.AuthService,
	articles *service.ArticleService,
	store repository.ArticleStore,
	db *pgxpool.Pool,
	cache *redis.Client,
) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		articles: articles,
		store:    store,
		db:       db,
		cache:    cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	users := router.Group("/users")
	{
		users.POST("/register", h.RegisterUser)
		users.POST("/login", h.Login)
		users.POST("/refresh-token", h.RefreshToken)
		users.POST("/forgot-password", h.ForgotPassword)
		users.POST("/reset-password", h.ResetPassword)
	}

	articles := router.Group("/articles")
	{
		articles.GET("", h.ListArticles)
		articles.GET("/:id", h.GetArticle)

		authed := articles.Group("")
		authed.Use(middleware.Authenticate(h.cfg))

		authed.POST("",
			middleware.RequireRoles(models.RoleAuthor, models.RoleAdmin),
			h.CreateArticle)
		authed.PUT("/:id",
			middleware.RequireRoles(models.RoleAuthor, models.RoleAdmin),
			middleware.ArticleOwnerOrAdmin(h.store),
			h.UpdateArticle)
		authed.DELETE("/:id",
			middleware.RequireRoles(models.RoleAuthor, models.RoleAdmin),
			middleware.ArticleOwnerOrAdmin(h.store),
			h.DeleteArticle)
		authed.PATCH("/:id/publish",
			middleware.RequireRoles(models.RoleAdmin),
			h.TogglePublish)
	}
}
