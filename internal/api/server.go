// Package api exposes the forecast engine over HTTP alongside health and metrics endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/arr-forecast/internal/config"
	"github.com/yourusername/arr-forecast/internal/metrics"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/service"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// ForecastService is the subset of service.ForecastService the API depends on.
type ForecastService interface {
	Forecast(ctx context.Context, table models.Table, cfg models.ForecastConfig) (*models.ForecastResult, error)
	ForecastAndStore(ctx context.Context, source string, table models.Table, cfg models.ForecastConfig) (*service.Outcome, error)
	Recent(ctx context.Context, limit int) ([]*models.ForecastRun, error)
	RecentForSource(ctx context.Context, source string, limit int) ([]*models.ForecastRun, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ForecastRun, error)
}

// Server serves the forecast API, health probes and Prometheus metrics.
type Server struct {
	serviceName  string
	version      string
	commit       string
	port         int
	readTimeout  time.Duration
	writeTimeout time.Duration
	metricsPath  string
	settings     config.Config
	forecasts    ForecastService
	db           DatabasePinger
	logger       *logrus.Logger
	server       *http.Server

	mu    sync.RWMutex
	ready bool
}

// Config holds the configuration for the API server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	// Settings supplies the listener and the forecast defaults for requests that omit them.
	Settings config.Config
	Service  ForecastService
	DB       DatabasePinger
	Logger   *logrus.Logger
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	port := cfg.Settings.Server.Port
	if port == 0 {
		port = 8080
	}
	readTimeout := cfg.Settings.Server.ReadTimeout()
	if readTimeout == 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := cfg.Settings.Server.WriteTimeout()
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}
	metricsPath := ""
	if cfg.Settings.Metrics.Enabled {
		metricsPath = cfg.Settings.Metrics.Path
	}

	return &Server{
		serviceName:  cfg.ServiceName,
		version:      cfg.Version,
		commit:       cfg.Commit,
		port:         port,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		metricsPath:  metricsPath,
		settings:     cfg.Settings,
		forecasts:    cfg.Service,
		db:           cfg.DB,
		logger:       log,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /live", s.handleLive)
	mux.HandleFunc("GET /ready", s.handleReady)
	if s.metricsPath != "" {
		mux.Handle("GET "+s.metricsPath, metrics.Handler())
	}

	mux.HandleFunc("POST /api/v1/forecasts", s.handleCreateForecast)
	mux.HandleFunc("GET /api/v1/forecasts", s.handleListForecasts)
	mux.HandleFunc("GET /api/v1/forecasts/{id}", s.handleGetForecast)

	return s.logRequests(mux)
}

// Start starts the server in the background and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.forecasts == nil {
		return fmt.Errorf("forecast service is required")
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.port,
			"service": s.serviceName,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.logger.WithError(err).Warn("API server shutdown incomplete")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	s.SetReady(false)
	s.logger.Info("API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("HTTP request")
	})
}
