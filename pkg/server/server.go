package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sheetsage/sheetsage/pkg/repository"
	"github.com/sheetsage/sheetsage/pkg/usecase/auth"
	"github.com/sheetsage/sheetsage/pkg/usecase/solve"
	"github.com/sheetsage/sheetsage/pkg/utils/logging"
)

const sessionCookie = "sheetsage_session"

// Handler bundles the usecases behind the HTTP surface
type Handler struct {
	submitter *solve.Submitter
	repo      repository.Repository
	auth      *auth.UseCase
	logger    *slog.Logger
}

func NewHandler(submitter *solve.Submitter, repo repository.Repository, authUC *auth.UseCase, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		submitter: submitter,
		repo:      repo,
		auth:      authUC,
		logger:    logger,
	}
}

// New builds the gin engine with all routes registered
func New(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger(), h.resolveSession())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/solve", h.Solve)
		api.POST("/export", h.Export)
		api.GET("/history", h.HistoryList)
		api.DELETE("/history", h.HistoryClear)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", h.SignUp)
			authGroup.POST("/login", h.LogIn)
			authGroup.POST("/logout", h.LogOut)
			authGroup.POST("/password-reset", h.PasswordResetRequest)
			authGroup.POST("/password-reset/confirm", h.PasswordResetConfirm)
		}
	}

	return r
}

// requestLogger attaches the server logger to the request context and logs
// each request on completion
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logging.With(c.Request.Context(), h.logger))

		c.Next()

		h.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
