package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"textorigin/internal/handler"
	"textorigin/internal/metrics"
	"textorigin/internal/middleware"
	"textorigin/internal/service"
)

// Deps are the services the HTTP layer routes to. Limiter must be the one given to
// AuthHandler.
type Deps struct {
	Auth        service.AuthService
	AuthHandler handler.AuthHandler
	Limiter     *middleware.PasswordLimiter
	Detector    *service.DetectorService
	Corpus      *service.CorpusService
	Scheduler   *service.RetrainScheduler
	Metrics     *metrics.Metrics
}

// Options configure the router and the listener.
type Options struct {
	Port            string
	CORSOrigins     []string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

type Server struct {
	router *gin.Engine
	opts   Options
	deps   Deps
	log    *zap.Logger
}

func NewServer(deps Deps, opts Options, log *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(opts.CORSOrigins))
	if opts.MaxBodyBytes > 0 {
		router.Use(middleware.MaxBodySize(opts.MaxBodyBytes))
	}

	s := &Server{
		router: router,
		opts:   opts,
		deps:   deps,
		log:    log,
	}

	s.setupRoutes()

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	detectorHandler := handler.NewDetectorHandler(s.deps.Detector, s.deps.Scheduler, s.deps.Corpus, s.log)
	corpusHandler := handler.NewCorpusHandler(s.deps.Corpus, s.deps.Detector, s.log)

	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	s.router.GET("/health", detectorHandler.Health)
	if s.deps.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	s.router.POST("/predict", detectorHandler.Predict)
	s.router.POST("/admin_login", s.deps.AuthHandler.Login)

	admin := s.router.Group("/")
	admin.Use(middleware.AdminAuth(s.deps.Auth, s.deps.Limiter, s.log))
	{
		admin.POST("/admin_logout", s.deps.AuthHandler.Logout)
		admin.POST("/add_data", corpusHandler.AddData)
		admin.POST("/delete_data", corpusHandler.DeleteData)
		admin.GET("/get_data_status", corpusHandler.GetDataStatus)
		admin.GET("/export_data", corpusHandler.ExportData)
		admin.POST("/retrain_model", detectorHandler.RetrainModel)
		admin.GET("/retrain_jobs", detectorHandler.ListJobs)
		admin.GET("/retrain_jobs/:id", detectorHandler.GetJob)
	}
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.opts.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server starting", zap.String("port", s.opts.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server...")
	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.log.Info("Server exited")
	return nil
}
