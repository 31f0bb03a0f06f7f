package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ppiankov/urlsum/internal/model"
	"github.com/ppiankov/urlsum/internal/pipeline"
)

// Runner executes one fetch-then-summarize request
type Runner interface {
	Run(ctx context.Context, src model.Source) (*pipeline.Result, error)
}

// Readiness reports whether the summarization model can serve requests
type Readiness interface {
	Ready(ctx context.Context) error
}

// Server exposes the summarize route over HTTP
type Server struct {
	cfg    model.ServeConfig
	runner Runner
	ready  Readiness
	log    *slog.Logger
	router *chi.Mux
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// New creates a server; ready may be nil, in which case /readyz always succeeds
func New(cfg model.ServeConfig, runner Runner, ready Readiness, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		runner: runner,
		ready:  ready,
		log:    log,
	}
	s.router = s.routes()
	return s
}

// RoutePrefix returns the normalized mount point of the summarize route
func (s *Server) RoutePrefix() string {
	return normalizePrefix(s.cfg.RoutePrefix)
}

func normalizePrefix(prefix string) string {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	summarize := func(r chi.Router) {
		if s.cfg.Replicas > 0 {
			// Excess requests queue instead of failing, like a fixed set of replicas
			r = r.With(throttle(s.cfg.Replicas, s.cfg.Replicas*8, time.Minute))
		}
		r.Get("/", s.handleSummarize)
	}

	if prefix := s.RoutePrefix(); prefix == "/" {
		summarize(r)
	} else {
		r.Route(prefix, summarize)
	}

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Serving", "addr", ln.Addr().String(), "route", s.RoutePrefix(), "replicas", s.cfg.Replicas)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("Shutting down", "timeout", timeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	kind, err := model.ParseKind(q.Get("type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rawURL := strings.TrimSpace(q.Get("url"))
	if rawURL == "" {
		s.writeError(w, r, fmt.Errorf("%w: url parameter is required", pipeline.ErrMalformedURL))
		return
	}

	result, err := s.runner.Run(r.Context(), model.Source{Kind: kind, URL: rawURL})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if q.Get("format") == "json" {
		writeJSON(w, http.StatusOK, result)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.Summary))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ready(r.Context()); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	class := pipeline.Classify(err)

	level := slog.LevelWarn
	if class.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.log.Log(r.Context(), level, "Request failed",
		"request_id", middleware.GetReqID(r.Context()),
		"code", class.Code,
		"status", class.Status,
		"error", err,
	)

	writeJSON(w, class.Status, errorBody{Error: class.Code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
