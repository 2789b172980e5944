// Package server exposes repository analysis over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jmgilman/go/repohealth"
	"github.com/jmgilman/go/repohealth/errors"
	"github.com/jmgilman/go/repohealth/metrics"
	"github.com/jmgilman/go/repohealth/quota"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Analyzer is the subset of *repohealth.Client the handlers use.
type Analyzer interface {
	CheckQuota(ctx context.Context, credential string) (quota.Status, error)
	AnalyzeRepository(ctx context.Context, owner, repo, credential string) (*repohealth.RepositorySnapshot, error)
	ResetCache()
}

var _ Analyzer = (*repohealth.Client)(nil)

// Server serves the HTTP API.
type Server struct {
	analyzer Analyzer
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock sets the time source for health timestamps and metrics.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server backed by analyzer.
func New(analyzer Analyzer, opts ...Option) *Server {
	s := &Server{
		analyzer: analyzer,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler:
//
//	GET  /health       liveness probe
//	GET  /check-token  quota of the credential in the Authorization header
//	POST /analyze      {"repo_url": "..."} to snapshot plus metrics
//	POST /clear-cache  drop every cached response
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /check-token", s.handleCheckToken)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /clear-cache", s.handleClearCache)
	return s.logRequests(mux)
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// TokenResponse is returned by GET /check-token.
type TokenResponse struct {
	Status    string       `json:"status"`
	Message   string       `json:"message"`
	RateLimit quota.Status `json:"rate_limit"`
}

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	RepoURL string `json:"repo_url"`
}

// AnalyzeResponse is returned by POST /analyze.
type AnalyzeResponse struct {
	*repohealth.RepositorySnapshot
	Metrics metrics.Metrics `json:"metrics"`
}

// MessageResponse carries a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: s.now().UTC()})
}

func (s *Server) handleCheckToken(w http.ResponseWriter, r *http.Request) {
	status, err := s.analyzer.CheckQuota(r.Context(), credential(r))
	if err != nil {
		// The quota endpoint only fails for a rejected or unusable token.
		err = errors.WrapWithContext(err, errors.CodeUnauthorized, "invalid GitHub token or API error",
			map[string]any{"cause": string(errors.GetCode(err))})
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Status:    "success",
		Message:   "GitHub token is valid",
		RateLimit: status,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(err, errors.CodeInvalidInput, "request body must be JSON"))
		return
	}
	if strings.TrimSpace(req.RepoURL) == "" {
		s.writeError(w, r, errors.New(errors.CodeInvalidInput, "repository URL is required"))
		return
	}

	owner, repo, err := repohealth.ParseRepositoryURL(req.RepoURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snapshot, err := s.analyzer.AnalyzeRepository(r.Context(), owner, repo, credential(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		RepositorySnapshot: snapshot,
		Metrics:            metrics.Compute(snapshot, s.now()),
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, _ *http.Request) {
	s.analyzer.ResetCache()
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Cache cleared successfully"})
}

// credential extracts the token from "Authorization: token X" or
// "Authorization: Bearer X". Anything else is anonymous.
func credential(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(token)
	default:
		return ""
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(errors.GetCode(err))
	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	writeJSON(w, status, errors.ToJSON(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the status written by a handler.
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
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		log := s.logger.With().Str("request_id", uuid.NewString()).Logger()
		next.ServeHTTP(rec, r.WithContext(log.WithContext(r.Context())))

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", s.now().Sub(start)).
			Msg("request handled")
	})
}
