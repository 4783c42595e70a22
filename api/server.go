// Package api - Thin HTTP layer over the billing service.
// Handlers decode input, delegate to core packages and serialize output.
// No pricing logic lives here.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sms-cost/core/billing"
)

// Options configures a Server
type Options struct {
	// Version is reported by /health and /version
	Version string

	// Logger defaults to a no-op logger
	Logger *zap.Logger
}

// Server is the API server
type Server struct {
	svc     *billing.Service
	mux     *http.ServeMux
	version string
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(svc *billing.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Server{
		svc:     svc,
		mux:     http.NewServeMux(),
		version: opts.Version,
		logger:  opts.Logger,
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /compute", s.handleCompute)
	s.mux.HandleFunc("GET /subjects/{id}/cost", s.handleCost)
	s.mux.HandleFunc("POST /subjects/{id}/usage", s.handleUsage)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", id)
	r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)

	s.logger.Info("request",
		zap.String("request_id", id),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}
