// Package api exposes the ROI calculator over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"amplify_roi/pkg/core/currency"
	"amplify_roi/pkg/core/notify"
	"amplify_roi/pkg/core/pipeline"
	"amplify_roi/pkg/core/refdata"
	"amplify_roi/pkg/core/report"
	"amplify_roi/pkg/core/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// ResultCache stores computed results by fingerprint.
type ResultCache interface {
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
}

// Mailer delivers rendered reports.
type Mailer interface {
	SendReport(ctx context.Context, e notify.ReportEmail) (string, error)
}

// Archiver keeps a copy of exported reports.
type Archiver interface {
	Archive(ctx context.Context, calculationID string, at time.Time, e report.Export) (string, error)
}

// GeoLocator maps a client IP to an ISO country code.
type GeoLocator interface {
	CountryISO(ip string) string
}

// Config holds server dependencies. Registry and Calculator are required;
// every other collaborator is optional and its feature degrades when nil.
type Config struct {
	Port       int
	Version    string
	AdminToken string
	Log        zerolog.Logger

	Registry   *refdata.Registry
	Calculator *pipeline.Calculator
	Formatter  *currency.Formatter

	Analytics store.AnalyticsRepository
	Cache     ResultCache
	CacheMode func() store.CacheMode
	Geo       GeoLocator
	Mailer    Mailer
	Archiver  Archiver
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config
	start  time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.Formatter == nil {
		cfg.Formatter = currency.NewFormatter()
	}

	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
		start:  time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-ID"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Reference data
		r.Get("/business-types", s.handleBusinessTypes)
		r.Get("/business-types/{id}", s.handleBusinessType)
		r.Get("/countries", s.handleCountries)
		r.Get("/countries/{code}", s.handleCountry)
		r.Get("/scenarios/search", s.handleSearchScenarios)
		r.Get("/currency/format", s.handleFormatCurrency)

		// Calculations
		r.Post("/calculate-roi", s.handleCalculate)
		r.Post("/what-if", s.handleWhatIf)
		r.Post("/sensitivity", s.handleSensitivity)

		// Reports
		r.Post("/export-report", s.handleExportReport)
		r.Post("/send-email", s.handleSendEmail)

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.adminAuth)
			r.Get("/analytics", s.handleAdminAnalytics)
			r.Get("/submissions", s.handleAdminSubmissions)
			r.Get("/exports", s.handleAdminExports)
			r.Post("/clear-data", s.handleAdminClearData)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
