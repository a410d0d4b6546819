// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"smart_advisor_backend/internal/config"
	"smart_advisor_backend/internal/dashboard"
	"smart_advisor_backend/internal/firebase"
	"smart_advisor_backend/internal/googleauth"
	"smart_advisor_backend/internal/jobs"
	"smart_advisor_backend/internal/middleware"
	"smart_advisor_backend/internal/notification"
	"smart_advisor_backend/internal/profile"
	"smart_advisor_backend/internal/shared"
	"smart_advisor_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	userHandler         *user.Handler
	profileHandler      *profile.Handler
	dashboardHandler    *dashboard.Handler
	googleAuthHandler   *googleauth.Handler
	notificationHandler *notification.Handler

	// Jobs
	credentialSweepJob *jobs.CredentialSweepJob

	authMW gin.HandlerFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	userHandler *user.Handler,
	profileHandler *profile.Handler,
	dashboardHandler *dashboard.Handler,
	googleAuthHandler *googleauth.Handler,
	notificationHandler *notification.Handler,
	credentialSweepJob *jobs.CredentialSweepJob,
	db *gorm.DB,
	firebaseService *firebase.FirebaseService,
	userService shared.Service,
) (*Server, error) {
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(firebaseService, userService, logger.Named("AuthMiddleware"))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Smart Advisor API is healthy!"})
	})

	v1 := router.Group("/api/v1")
	userHandler.RegisterRoutes(v1, authMW)
	profileHandler.RegisterRoutes(v1, authMW)
	dashboardHandler.RegisterRoutes(v1, authMW)
	googleAuthHandler.RegisterRoutes(v1, authMW)
	notificationHandler.RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:          httpServer,
		router:              router,
		cfg:                 cfg,
		logger:              logger,
		userHandler:         userHandler,
		profileHandler:      profileHandler,
		dashboardHandler:    dashboardHandler,
		googleAuthHandler:   googleAuthHandler,
		notificationHandler: notificationHandler,
		credentialSweepJob:  credentialSweepJob,
		authMW:              authMW,
	}, nil
}

// Start launches the background jobs and the HTTP listener. Blocks until the
// listener stops.
func (s *Server) Start() error {
	if s.credentialSweepJob != nil {
		if err := s.credentialSweepJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start credential sweep job", zap.Error(err))
		}
	} else {
		s.logger.Info("Credential sweep job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the background jobs and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.credentialSweepJob != nil {
		s.credentialSweepJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
