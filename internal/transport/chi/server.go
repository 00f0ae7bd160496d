package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/usagerelay/internal/logger"
	healthuc "github.com/kailas-cloud/usagerelay/internal/usecase/health"
	usageuc "github.com/kailas-cloud/usagerelay/internal/usecase/usage"
)

// Server serves the cached usage snapshot. Handlers never reach upstream.
type Server struct {
	usage  *usageuc.Service
	health *healthuc.Service
}

// NewServer creates an HTTP API server. Handlers log through the request-scoped
// logger installed by the wide event middleware.
func NewServer(usage *usageuc.Service, health *healthuc.Service) *Server {
	return &Server{
		usage:  usage,
		health: health,
	}
}

// Handler mounts all routes on r and returns it.
func Handler(s *Server, r chi.Router) http.Handler {
	r.Group(func(r chi.Router) {
		r.Use(CORSMiddleware())
		r.Get("/", s.GetUsage)
		r.Get("/usage", s.GetUsage)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	HasData bool   `json:"has_data"`
	Message string `json:"message"`
}

// ErrorResponse is the body used for failure snapshots and internal errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetUsage handles GET / and GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	snap, doc, err := s.usage.Current(r.Context())
	if err != nil {
		logpkg.FromContext(r.Context()).Error("encode snapshot", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if at := snap.UpdatedAt(); !at.IsZero() {
		w.Header().Set("Last-Modified", at.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  string(report.Status),
		HasData: report.HasData,
		Message: report.Message,
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

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
