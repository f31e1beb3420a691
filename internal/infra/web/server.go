package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/infra/logging"
	"travel-ai-planner/internal/infra/notify"
	"travel-ai-planner/internal/usecase"
)

// Server exposes the plan pipeline over HTTP: job submission, status
// polling, group notifications and interactive chat (both via SSE).
type Server struct {
	queue       repository.PlanJobQueue
	status      repository.StatusStore
	results     repository.ResultCache
	itineraries repository.ItineraryRepository
	chat        usecase.StreamChatUseCase
	hub         *notify.Hub
	log         *zerolog.Logger
}

func NewServer(
	queue repository.PlanJobQueue,
	status repository.StatusStore,
	results repository.ResultCache,
	itineraries repository.ItineraryRepository,
	chat usecase.StreamChatUseCase,
	hub *notify.Hub,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		queue:       queue,
		status:      status,
		results:     results,
		itineraries: itineraries,
		chat:        chat,
		hub:         hub,
		log:         &l,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(traceContext)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plans", s.handleCreatePlan)
		r.Get("/plans/{planID}/status", s.handlePlanStatus)
		r.Get("/plans/{planID}/result", s.handlePlanResult)
		r.Get("/plans/{planID}/events", s.handlePlanEvents)
		r.Post("/chat/stream", s.handleChatStream)
	})
	return r
}

// traceContext copies the chi request ID into the logging context so
// sub-loggers built with logging.With carry a trace_id field.
func traceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			r = r.WithContext(logging.WithTraceID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeNotFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": msg,
		"code":  string(domain.CodeResourceNotFound),
	})
}
