// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	service "github.com/okian/homeval/internal/app"
	"github.com/okian/homeval/internal/domain/predict"
	"github.com/okian/homeval/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictDependencies
	StatsProvider

	Info() service.Info
	Model() service.ModelInfo
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps         Dependencies
	logger       logger.Logger
	strictErrors bool
	maxBodyBytes int64

	rootHandler    *RootHandler
	predictHandler *PredictHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rootHandler = NewRootHandler(deps)
	s.predictHandler = NewPredictHandler(s, deps)
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/{$}", s.wrap(s.rootHandler.HandleRoot, "root"))
	mux.Handle("/predict", s.wrap(s.predictHandler.HandlePredict, "predict"))
	mux.Handle("/model", s.wrap(s.rootHandler.HandleModel, "model"))
	mux.Handle("/stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/healthz", s.wrap(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.wrap(s.healthHandler.HandleMetrics, "metrics"))
}

// Wrap applies the standard middleware chain to a handler registered
// outside this package, such as the HTML pages.
func (s *Server) Wrap(next http.HandlerFunc, endpoint string) http.Handler {
	return s.wrap(next, endpoint)
}

func (s *Server) wrap(next http.HandlerFunc, endpoint string) http.Handler {
	return RequestIDMiddleware(
		MetricsMiddleware(
			RecoverMiddleware(LoggingMiddleware(next, endpoint, s.logger), s.logger),
			endpoint,
		),
	)
}

// errorResponse is the uniform failure body. Callers detect failures by
// the presence of the error key.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// methodNotAllowed answers a request whose verb the route does not serve.
func methodNotAllowed(w http.ResponseWriter, allow ...string) {
	for _, m := range allow {
		w.Header().Add("Allow", m)
	}
	writeError(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
}

// statusFor picks the HTTP status for a prediction failure. Without strict
// errors every failure body is sent with 200.
func (s *Server) statusFor(err error) int {
	if !s.strictErrors {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, predict.ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// log returns the configured logger or the global one.
func (s *Server) log() logger.Logger {
	return resolve(s.logger)
}
