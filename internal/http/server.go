// Package http provides the gin API server, its health endpoints and the metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authHTTP "github.com/allisson/warden/internal/auth/http"
	authUseCase "github.com/allisson/warden/internal/auth/usecase"
	"github.com/allisson/warden/internal/config"
	"github.com/allisson/warden/internal/metrics"
	postDomain "github.com/allisson/warden/internal/post/domain"
	postHTTP "github.com/allisson/warden/internal/post/http"
	userHTTP "github.com/allisson/warden/internal/user/http"
)

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// Handlers groups the request handlers mounted by SetupRouter.
type Handlers struct {
	Token    *authHTTP.TokenHandler
	AuditLog *authHTTP.AuditLogHandler
	User     *userHTTP.UserHandler
	Post     *postHTTP.PostHandler
}

// NewServer creates a new API server. db backs the readiness probe and may be nil.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: newHTTPServer(host, port),
	}
}

// SetupRouter builds the gin engine with every API route. ctx bounds the lifetime of the
// rate limiter cleanup goroutines.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	guard authUseCase.GuardUseCase,
	handlers Handlers,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(authHTTP.CorrelationIDMiddleware())
	router.Use(CustomLoggerMiddleware(s.logger))

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authenticated := authHTTP.AuthenticationMiddleware(guard, s.logger)
	optional := authHTTP.OptionalAuthenticationMiddleware(guard, s.logger)
	require := func(capability authDomain.Capability) gin.HandlerFunc {
		return authHTTP.RequireCapability(guard, capability, s.logger)
	}

	var ipLimited gin.HandlerFunc = passThrough
	if cfg.RateLimitTokenEnabled {
		ipLimited = authHTTP.IPRateLimitMiddleware(
			ctx, cfg.RateLimitTokenRequestsPerSec, cfg.RateLimitTokenBurst, s.logger,
		)
	}
	var subjectLimited gin.HandlerFunc = passThrough
	if cfg.RateLimitEnabled {
		subjectLimited = authHTTP.SubjectRateLimitMiddleware(
			ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger,
		)
	}

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", ipLimited, optional, handlers.User.RegisterHandler)
		auth.POST("/login", ipLimited, handlers.Token.LoginHandler)
		auth.POST("/refresh", ipLimited, handlers.Token.RefreshHandler)
		// Logout is reached with an access token that may already have expired.
		auth.POST("/logout", ipLimited, optional, handlers.Token.LogoutHandler)

		session := auth.Group("", authenticated, subjectLimited)
		session.POST("/logout-all", handlers.Token.LogoutAllHandler)
		session.GET("/profile", require(authDomain.ProfileRead), handlers.User.GetProfileHandler)
		session.PUT("/profile", require(authDomain.ProfileUpdate), handlers.User.UpdateProfileHandler)
	}

	posts := v1.Group("/posts", authenticated, subjectLimited)
	{
		owned := authHTTP.RequireOwnership(guard, postDomain.ResourceType, "id", handlers.Post.Loader(), s.logger)

		posts.GET("", require(authDomain.PostsRead), handlers.Post.ListHandler)
		posts.POST("", require(authDomain.PostsCreate), handlers.Post.CreateHandler)
		posts.GET("/:id", require(authDomain.PostsRead), handlers.Post.GetHandler)
		posts.PUT("/:id", require(authDomain.PostsUpdate), owned, handlers.Post.UpdateHandler)
		posts.DELETE("/:id", require(authDomain.PostsDelete), owned, handlers.Post.DeleteHandler)
	}

	admin := v1.Group("/admin", authenticated, subjectLimited)
	{
		admin.GET("/users", require(authDomain.UsersRead), handlers.User.ListHandler)
		admin.PATCH("/users/:id/role", require(authDomain.UsersAssignRole), handlers.User.ChangeRoleHandler)
		admin.PATCH("/users/:id/status", require(authDomain.UsersUpdate), handlers.User.SetActiveHandler)
	}

	v1.GET("/audit-logs", authenticated, subjectLimited, require(authDomain.AdminAudit), handlers.AuditLog.ListHandler)

	s.router = router
}

func passThrough(c *gin.Context) {
	c.Next()
}

// GetHandler returns the configured router. It is nil until SetupRouter runs.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Start serves requests until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router
	return listenAndServe(s.server, s.logger, "http server")
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready once the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
