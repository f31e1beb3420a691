package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/infra/logging"
	"travel-ai-planner/internal/infra/notify"
	"travel-ai-planner/internal/usecase"
)

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req model.TravelPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Destination == "" {
		writeError(w, http.StatusBadRequest, "destination is required")
		return
	}

	job := model.PlanGenerationJob{
		PlanID:            ulid.Make().String(),
		Request:           req,
		UserID:            r.Header.Get("X-User-ID"),
		AnonymousCookieID: anonymousID(r),
		EnqueuedAt:        time.Now(),
	}

	ctx := logging.WithPlanID(r.Context(), job.PlanID)
	log := logging.With(ctx, s.log)

	// The pending record exists before the job is visible to the worker,
	// so a poll immediately after submit never sees "unknown".
	if err := s.status.Set(ctx, model.NewPlanGenerationState(job.PlanID)); err != nil {
		log.Error().Err(err).Msg("initial status write failed")
	}
	if err := s.queue.Enqueue(job); err != nil {
		log.Error().Err(err).Msg("enqueue failed")
		writeError(w, http.StatusServiceUnavailable, "generation is not accepting jobs")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"planId": job.PlanID})
}

func (s *Server) handlePlanStatus(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	ctx := logging.WithPlanID(r.Context(), planID)
	state, err := s.status.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown or expired, never reported as a failure of the job.
			writeNotFound(w, "unknown or expired plan")
			return
		}
		logging.With(ctx, s.log).Error().Err(err).Msg("status read failed")
		writeError(w, http.StatusInternalServerError, "status unavailable")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePlanResult(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	ctx := logging.WithPlanID(r.Context(), planID)

	if it, err := s.results.GetResult(ctx, planID); err == nil {
		writeJSON(w, http.StatusOK, it)
		return
	}

	saved, err := s.itineraries.FindByPlanID(ctx, planID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "no result for plan")
			return
		}
		logging.With(ctx, s.log).Error().Err(err).Msg("result read failed")
		writeError(w, http.StatusInternalServerError, "result unavailable")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handlePlanEvents joins the caller to the plan's notification group and
// relays status broadcasts over SSE until a terminal status or disconnect.
func (s *Server) handlePlanEvents(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	connID := uuid.NewString()
	events := s.hub.Subscribe(connID)
	defer s.hub.Unsubscribe(connID)
	s.hub.JoinGroup(connID, planID)

	sseHeaders(w)

	// Replay the current status so late joiners are not left waiting for
	// the next checkpoint.
	if state, err := s.status.Get(r.Context(), planID); err == nil {
		writeSSE(w, flusher, notify.Event{Kind: notify.EventStatus, State: state})
		if state.Status.Terminal() {
			return
		}
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			writeSSE(w, flusher, ev)
			if ev.State != nil && ev.State.Status.Terminal() {
				return
			}
		}
	}
}

type chatStreamRequest struct {
	CallerID    string `json:"callerId"`
	Prompt      string `json:"prompt"`
	PlanContext string `json:"planContext"`
	Destination string `json:"destination"`
	Days        int    `json:"days"`
	Travelers   int    `json:"travelers"`
	Budget      string `json:"budget"`
	History     string `json:"history"`
}

// handleChatStream runs one interactive session, bridging hub events for
// this caller onto the response as SSE.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	callerID := req.CallerID
	if callerID == "" {
		callerID = uuid.NewString()
	}

	events := s.hub.Subscribe(callerID)
	defer s.hub.Unsubscribe(callerID)

	sseHeaders(w)

	ctx := logging.WithCallerID(r.Context(), callerID)
	go func() {
		err := s.chat.Respond(ctx, usecase.StreamChatInput{
			CallerID:    callerID,
			Prompt:      req.Prompt,
			PlanContext: req.PlanContext,
			Destination: req.Destination,
			Days:        req.Days,
			Travelers:   req.Travelers,
			Budget:      req.Budget,
			History:     req.History,
		})
		if err != nil {
			logging.With(ctx, s.log).Debug().Err(err).Msg("chat session ended early")
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			writeSSE(w, flusher, ev)
			if ev.Kind == notify.EventStreamEnd || ev.Kind == notify.EventError {
				return
			}
		}
	}
}

func sseHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev notify.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
	flusher.Flush()
}

func anonymousID(r *http.Request) string {
	if c, err := r.Cookie("anon_id"); err == nil {
		return c.Value
	}
	return r.Header.Get("X-Anonymous-ID")
}
