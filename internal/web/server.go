// Package web serves the upload form, job status and record listing over
// HTTP.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/recon/internal/compare"
	"github.com/JonMunkholm/recon/internal/config"
	"github.com/JonMunkholm/recon/internal/ingest"
	"github.com/JonMunkholm/recon/internal/jobs"
	weblog "github.com/JonMunkholm/recon/internal/web/middleware"
)

// RecordReader lists persisted records. *ingest.PostgresStore implements it.
type RecordReader interface {
	ListBookings(ctx context.Context, f ingest.RecordFilter) ([]ingest.StoredBooking, int64, error)
	ListRefunds(ctx context.Context, f ingest.RecordFilter) ([]ingest.StoredRefund, int64, error)
}

// Pinger checks database reachability. *pgxpool.Pool implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Registry *ingest.Registry
	Runner   *jobs.Runner
	Records  RecordReader
	Comparer compare.Comparer
	DB       Pinger // optional
	Logger   *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	registry *ingest.Registry
	runner   *jobs.Runner
	records  RecordReader
	comparer compare.Comparer
	db       Pinger
	logger   *slog.Logger

	router *chi.Mux
	server *http.Server
}

// NewServer wires the router. A nil Comparer answers every comparison with
// compare.ErrNotImplemented.
func NewServer(cfg *config.Config, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Comparer == nil {
		d.Comparer = compare.NotImplemented{}
	}
	s := &Server{
		cfg:      cfg,
		registry: d.Registry,
		runner:   d.Runner,
		records:  d.Records,
		comparer: d.Comparer,
		db:       d.DB,
		logger:   d.Logger,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(weblog.Logger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/jobs", s.handleJobsPage)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{jobID}", s.handleGetJob)
		r.Get("/records/{type}", s.handleRecords)
		r.Get("/compare", s.handleCompare)
	})
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}
	s.logger.Info("http server listening", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status. Encoding errors are only
// logged since the header is already sent.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("json encode error", "error", err)
	}
}
