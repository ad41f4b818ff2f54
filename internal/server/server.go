// Package server exposes the interpreter over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/CommonsSwarm/evmscripter/internal/interpreter"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// maxScriptSize bounds request bodies.
const maxScriptSize = 1 << 20

// Config holds configuration for the HTTP server.
type Config struct {
	Interpreter *interpreter.Interpreter
	Registry    *module.Registry
	Port        int
	ReadTimeout time.Duration
	Logger      *slog.Logger
}

// Server serves POST /interpret, GET /modules and GET /healthz.
type Server struct {
	interp      *interpreter.Interpreter
	registry    *module.Registry
	port        int
	readTimeout time.Duration
	logger      *slog.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	return &Server{
		interp:      cfg.Interpreter,
		registry:    cfg.Registry,
		port:        cfg.Port,
		readTimeout: cfg.ReadTimeout,
		logger:      logger,
	}
}

// InterpretRequest is the body of POST /interpret.
type InterpretRequest struct {
	Script string `json:"script"`
}

// InterpretResponse is the success body of POST /interpret.
type InterpretResponse struct {
	Actions []module.Action `json:"actions"`
}

// ErrorResponse is the failure body of every endpoint.
type ErrorResponse struct {
	Error module.Report `json:"error"`
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug), NoColor: true}),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/modules", s.handleModules)
	r.Post("/interpret", s.handleInterpret)
	return r
}

func (s *Server) handleModules(w http.ResponseWriter, _ *http.Request) {
	defs := s.registry.All()
	infos := make([]module.Info, len(defs))
	for i, def := range defs {
		infos[i] = def.Info()
	}
	writeJSON(w, http.StatusOK, map[string]any{"modules": infos})
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req InterpretRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScriptSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: module.Report{
			Kind:    "RequestError",
			Message: fmt.Sprintf("invalid request body: %v", err),
		}})
		return
	}

	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	actions, err := s.interp.Interpret(r.Context(), req.Script)
	if err != nil {
		report := module.NewReport(err)
		logger.Debug("interpretation failed", "kind", report.Kind, "error", err)
		status := http.StatusUnprocessableEntity
		if report.Kind == "Error" {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, ErrorResponse{Error: report})
		return
	}

	if actions == nil {
		actions = []module.Action{}
	}
	logger.Debug("script interpreted", "actions", len(actions))
	writeJSON(w, http.StatusOK, InterpretResponse{Actions: actions})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting HTTP server", "addr", addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: s.readTimeout,
		ReadTimeout:       s.readTimeout,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
