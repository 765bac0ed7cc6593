// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mybench_backend/internal/application"
	"mybench_backend/internal/candidate"
	"mybench_backend/internal/company"
	"mybench_backend/internal/config"
	"mybench_backend/internal/credit"
	"mybench_backend/internal/job"
	"mybench_backend/internal/middleware"
	"mybench_backend/internal/notification"
	"mybench_backend/internal/platform/elasticsearch"
	"mybench_backend/internal/scheduler"
	"mybench_backend/internal/search"
	"mybench_backend/internal/shared"
	"mybench_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler mounted under /api/v1.
type Handlers struct {
	User         *user.Handler
	Company      *company.Handler
	Candidate    *candidate.Handler
	Search       *search.Handler
	Credit       *credit.Handler
	Job          *job.Handler
	Application  *application.Handler
	Notification *notification.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	jobExpiry  *scheduler.JobExpiryJob

	// Logger and Indexer are used by the CLI around start-up.
	Logger  *zap.Logger
	Indexer *elasticsearch.Indexer
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	verifier shared.TokenVerifier,
	userService shared.Service,
	handlers Handlers,
	jobExpiry *scheduler.JobExpiryJob,
	indexer *elasticsearch.Indexer,
) *Server {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "MyBench API is healthy!"})
	})

	authMW := middleware.AuthMiddleware(verifier, userService, logger)
	v1 := router.Group("/api/v1", authMW)
	handlers.User.RegisterRoutes(v1)
	handlers.Company.RegisterRoutes(v1)
	handlers.Candidate.RegisterRoutes(v1)
	handlers.Search.RegisterRoutes(v1)
	handlers.Credit.RegisterRoutes(v1)
	handlers.Job.RegisterRoutes(v1)
	handlers.Application.RegisterRoutes(v1)
	handlers.Notification.RegisterRoutes(v1)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		jobExpiry:  jobExpiry,
		Logger:     logger,
		Indexer:    indexer,
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the scheduler and blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	if s.jobExpiry != nil {
		if err := s.jobExpiry.SetupAndStart(); err != nil {
			s.Logger.Error("Failed to setup and start job expiry", zap.Error(err))
		}
	}

	s.Logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.Logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.Logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the scheduler and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("Attempting graceful server shutdown...")
	if s.jobExpiry != nil {
		s.jobExpiry.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
