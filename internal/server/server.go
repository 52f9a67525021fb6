package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"taskapi/internal/auth"
	"taskapi/internal/quotes"
	"taskapi/internal/storage/sqlite"
)

// Context keys set by the auth middleware.
const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
)

// Server provides the HTTP handlers for the task API.
type Server struct {
	engine    *gin.Engine
	store     *sqlite.Store
	tokens    *auth.Manager
	quotes    *quotes.Client
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, tokens *auth.Manager, quoteClient *quotes.Client, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:    router,
		store:     store,
		tokens:    tokens,
		quotes:    quoteClient,
		logger:    logger,
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/refresh", s.handleRefresh)
		}

		protected := api.Group("", s.requireAuth)
		{
			tasks := protected.Group("/tasks")
			{
				tasks.GET("", s.handleListTasks)
				tasks.POST("", s.handleCreateTask)
				tasks.GET("/search", s.handleSearchTasks)
				tasks.GET("/statistics", s.handleTaskStatistics)
				tasks.GET("/export", s.handleExportTasks)
				tasks.PUT("/:id", s.handleUpdateTask)
				tasks.PATCH("/:id", s.handleUpdateTask)
				tasks.DELETE("/:id", s.handleDeleteTask)
			}

			protected.GET("/quotes/motivational", s.handleMotivationalQuote)
		}
	}

	s.mountStatic()
}

// requireAuth resolves the bearer token into the caller identity. Every task
// operation runs behind it; the owner is never taken from the payload.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	claims, err := s.tokens.ValidateAccess(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
	c.Next()
}

// currentUser returns the authenticated caller set by requireAuth.
func currentUser(c *gin.Context) (id, username string) {
	return c.GetString(ctxUserID), c.GetString(ctxUsername)
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleMotivationalQuote proxies the quote service; failures terminate in
// the local fallback, never in an error response.
func (s *Server) handleMotivationalQuote(c *gin.Context) {
	c.JSON(http.StatusOK, s.quotes.Random(c.Request.Context()))
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondStoreError maps storage errors onto HTTP statuses. Not-found is
// deliberately uniform: a caller cannot tell a foreign task from a missing
// one.
func (s *Server) respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, sqlite.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": sqlite.ErrNotFound.Error()})
		return
	}
	s.respondError(c, http.StatusInternalServerError, err)
}

// respondValidation rejects a payload listing the offending fields.
func respondValidation(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
