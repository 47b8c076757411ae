// Package server exposes the pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness and configuration summary
//	POST /v1/style    infer a style from a description
//	POST /v1/plan     extract and plan a document, returning a plan file
//	POST /v1/render   render a document or a saved plan
//
// Plan and render accept either a JSON body or a multipart form with the
// document in a "file" field. Errors use one envelope:
//
//	{"error": {"code": "INVALID_FORMAT", "message": "..."}}
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/handscript/internal/config"
	"github.com/matzehuels/handscript/pkg/buildinfo"
	"github.com/matzehuels/handscript/pkg/pipeline"
)

// Server serves the HTTP API for one runner.
type Server struct {
	runner   *pipeline.Runner
	cfg      config.ServerConfig
	defaults pipeline.Options
	logger   *log.Logger
	router   chi.Router
}

// New returns a server for runner. The runner is shared by all requests;
// cfg supplies the listener settings and the render defaults applied to
// every request.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, cfg: cfg.Server, defaults: cfg.Options(), logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", stderrors.New("no such route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", stderrors.New("method not allowed"))
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/style", s.handleStyle)
		r.Post("/plan", s.handlePlan)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// logRequests logs one line per request at info level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		}
		next.ServeHTTP(w, r)
	})
}
