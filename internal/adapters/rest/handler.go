// Package rest is the HTTP driving adapter.
package rest

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/emotunes/internal/core/ports"
	"github.com/ewilliams-labs/emotunes/internal/core/services"
	"github.com/ewilliams-labs/emotunes/internal/worker"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	analyzer *services.SongAnalyzer
	catalog  *services.CatalogService // nil when no catalog credentials are configured
	analyses ports.AnalysisRepository
	pool     *worker.Pool // nil disables ?async=true
	log      *zap.Logger
	now      func() time.Time
	router   *http.ServeMux
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(analyzer *services.SongAnalyzer, catalog *services.CatalogService, analyses ports.AnalysisRepository, pool *worker.Pool, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		analyzer: analyzer,
		catalog:  catalog,
		analyses: analyses,
		pool:     pool,
		log:      log,
		now:      time.Now,
		router:   http.NewServeMux(),
	}
	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.observe(h.router).ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)

	h.router.HandleFunc("POST /analyze_song", h.AnalyzeSong)
	h.router.HandleFunc("GET /analyses", h.ListAnalyses)
	h.router.HandleFunc("GET /analyses/{id}", h.GetAnalysis)

	h.router.HandleFunc("GET /recommendations", h.GetRecommendations)
	h.router.HandleFunc("GET /tracks/{id}", h.GetTrackInfo)
	h.router.HandleFunc("GET /genres", h.GetGenres)

	h.router.Handle("GET /metrics", promhttp.Handler())
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Timestamp: h.now().UTC()})
}
