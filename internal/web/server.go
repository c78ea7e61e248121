package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"hotspot-monitor/internal/models"
	"hotspot-monitor/internal/scheduler"
)

// StatusProvider exposes the coordinator snapshot
type StatusProvider interface {
	Status() models.Status
}

// LogbookReader is the read side of the logbook
type LogbookReader interface {
	QueryEvents(ctx context.Context, since time.Time, limit int) ([]models.LogEvent, error)
	SummarizeRange(ctx context.Context, days int) ([]models.DailySummary, error)
	Ping(ctx context.Context) error
}

// JobLister reports scheduled jobs
type JobLister interface {
	Jobs() []scheduler.JobStatus
}

// Server is the read-only status API
type Server struct {
	handler *Handler
	router  *gin.Engine
	server  *http.Server
	logger  *logrus.Logger
}

// New creates the status server. jobs may be nil.
func New(status StatusProvider, book LogbookReader, jobs JobLister, listen string, logger *logrus.Logger) *Server {
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	h := NewHandler(status, book, jobs, logger)

	router := gin.New()
	router.Use(RequestID(), AccessLog(logger), RecoverJSON(logger))

	api := router.Group("/api")
	{
		api.GET("/status", h.GetStatus)
		api.GET("/events", h.GetEvents)
		api.GET("/summary", h.GetSummary)
		api.GET("/health", h.Health)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		handler: h,
		router:  router,
		server: &http.Server{
			Addr:              listen,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the HTTP handler, for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("Status API starting")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
