// Package server exposes snapshots over HTTP.
//
// Every request captures a fresh snapshot over the shared connection
// pool; nothing is cached between requests.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/dialect"
	"github.com/koustreak/dbsnap/internal/logger"
	"github.com/koustreak/dbsnap/internal/report"
	"github.com/koustreak/dbsnap/internal/snapshot"
)

// Options configures a Server.
type Options struct {
	// Driver is the registry name of the dialect.
	Driver  string
	Dialect dialect.Options

	// Schema is captured when a request names none.
	Schema      string
	Concurrency int

	// Format is used when a request has no ?format=.
	Format string

	// SnapshotTimeout bounds a single capture. Zero means no limit
	// beyond the request context.
	SnapshotTimeout time.Duration

	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger *logger.Logger
}

// Server serves snapshot reports of one database.
type Server struct {
	db     database.DB
	opts   Options
	log    *logger.Logger
	router chi.Router
	now    func() time.Time
}

// New builds a Server over db. db stays owned by the caller.
func New(db database.DB, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Format == "" {
		opts.Format = report.FormatYAML
	}

	s := &Server{
		db:   db,
		opts: opts,
		log:  opts.Logger.With().Str("component", "server").Logger(),
		now:  time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/snapshot", func(r chi.Router) {
		r.Get("/", s.handleSnapshot)
		r.Get("/tables/{table}", s.handleTable)
	})
	return r
}

// Handler returns the HTTP handler of s.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoWith("listening", map[string]any{"addr": s.opts.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// capture takes a snapshot of the schema named by the request.
func (s *Server) capture(r *http.Request) (*snapshot.Snapshot, error) {
	ctx := r.Context()
	if s.opts.SnapshotTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.SnapshotTimeout)
		defer cancel()
	}

	schemaName := r.URL.Query().Get("schema")
	if schemaName == "" {
		schemaName = s.opts.Schema
	}

	return snapshot.Open(ctx, s.db, snapshot.OpenOptions{
		Driver:      s.opts.Driver,
		Dialect:     s.opts.Dialect,
		Schema:      schemaName,
		Logger:      s.log,
		Concurrency: s.opts.Concurrency,
	})
}

func (s *Server) format(r *http.Request) (string, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return report.ParseFormat(f)
	}
	return s.opts.Format, nil
}
