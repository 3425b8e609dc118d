// Package chi exposes the answer pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/auditcloud/ragdex/internal/domain"
	healthuc "github.com/auditcloud/ragdex/internal/usecase/health"
)

// Answerer runs the full answer pipeline for one query.
type Answerer interface {
	AnswerQuery(ctx context.Context, q domain.Query) domain.RagResult
}

// Searcher exposes raw retrieval for the debugging endpoint.
type Searcher interface {
	Retrieve(ctx context.Context, text string, topK int, filters map[string]string) []domain.Hit
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	answers     Answerer
	search      Searcher
	health      HealthChecker
	defaultTopK int
	logger      *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(answers Answerer, search Searcher, health HealthChecker, defaultTopK int, logger *zap.Logger) *Server {
	if defaultTopK <= 0 {
		defaultTopK = 6
	}
	return &Server{
		answers:     answers,
		search:      search,
		health:      health,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Routes mounts the API on the router. Middleware is the caller's concern.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/chat", s.Chat)
	r.Get("/api/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	topK := req.K
	if topK == 0 {
		topK = s.defaultTopK
	}

	q, err := domain.NewQuery(req.Query, topK, req.Filter, req.VerifyNumbers)
	if err != nil {
		s.logger.Warn("rejected chat request", zap.Error(err))
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	res := s.answers.AnswerQuery(r.Context(), q)
	writeJSON(w, http.StatusOK, resultToDTO(res))
}

// Search handles GET /api/search. Raw retrieval without generation,
// kept as a debugging surface.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query parameter is required")
		return
	}

	topK := s.defaultTopK
	if raw := r.URL.Query().Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "k must be a positive integer")
			return
		}
		if k > domain.MaxTopK {
			k = domain.MaxTopK
		}
		topK = k
	}

	hits := s.search.Retrieve(r.Context(), query, topK, nil)
	writeJSON(w, http.StatusOK, searchResponse{
		Query: query,
		Hits:  hitsToDTO(hits),
		Total: len(hits),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
