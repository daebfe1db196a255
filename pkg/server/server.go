// Package server exposes a dashboard board and the preferences service over
// HTTP and a WebSocket update stream.
//
// Every JSON response uses one envelope:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": "preset slot 4 is empty", "code": "PRESET_NOT_FOUND"}
//
// Error codes come from package errors and map onto HTTP status codes:
// validation failures are 400, missing resources 404, version conflicts 409
// (with the stored version in data.current_version) and backend failures
// 500.
//
// The caller is identified by the X-User-ID header (default "local") and
// the X-Session-ID header; a request without a session is given one. The
// session tags preference writes so a client's own changes are not echoed
// back on its stream.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gridboard/pkg/board"
	"github.com/matzehuels/gridboard/pkg/buildinfo"
	"github.com/matzehuels/gridboard/pkg/prefs"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Addr   string
	Board  *board.Board
	Prefs  *prefs.Service
	Logger *log.Logger

	ShutdownTimeout time.Duration
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Addr == "" {
		o.Addr = ":8080"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Server serves one board.
type Server struct {
	opts   Options
	board  *board.Board
	prefs  *prefs.Service
	logger *log.Logger
	router chi.Router
}

// New builds the server and its routes. Board and Prefs are required.
func New(opts Options) *Server {
	opts.SetDefaults()
	s := &Server{
		opts:   opts,
		board:  opts.Board,
		prefs:  opts.Prefs,
		logger: opts.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(identity)

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", s.getPreferences)
			r.Put("/", s.replacePreferences)
			r.Patch("/", s.patchPreferences)
			r.Post("/batch-delete", s.batchDeletePreferences)
			r.Delete("/{key}", s.deletePreference)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", s.getDashboard)
			r.Get("/history", s.getHistory)
			r.Post("/compact", s.compact)
			r.Post("/layout", s.layoutChanged)
			r.Post("/gestures/{phase}", s.gesture)
			r.Delete("/widgets/{id}", s.removeWidget)
			r.Post("/widgets/{id}/resize", s.resizeWidget)
		})

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", s.getPresets)
			r.Put("/{slot}", s.putPreset)
			r.Delete("/{slot}", s.deletePreset)
			r.Post("/{slot}/save", s.savePreset)
			r.Post("/{slot}/load", s.loadPreset)
		})

		r.Get("/autocycle", s.getAutoCycle)
		r.Put("/autocycle", s.putAutoCycle)
		r.Post("/autocycle/input", s.autoCycleInput)
		r.Put("/modal", s.setModal)

		r.Get("/ws", s.handleWS)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
		Store:   s.prefs.Backend(),
	})
}
