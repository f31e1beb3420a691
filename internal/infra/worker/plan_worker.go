package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/infra/metrics"
	"travel-ai-planner/internal/usecase"
)

// failedStatusMessage is the user-safe text put in the public error field.
// The underlying failure is logged and never exposed verbatim.
const failedStatusMessage = "itinerary generation failed, please try again"

// PlanGenerationWorker is the sole consumer of the job queue. It owns each
// job end-to-end: status transitions are monotonic per plan id and a
// terminal state is written exactly once.
type PlanGenerationWorker struct {
	queue       repository.PlanJobQueue
	status      repository.StatusStore
	results     repository.ResultCache
	itineraries repository.ItineraryRepository
	generator   usecase.PlanGenerator
	images      adapter.ImageSearchAdapter
	groups      adapter.GroupNotifier
	log         *zerolog.Logger
}

func NewPlanGenerationWorker(
	queue repository.PlanJobQueue,
	status repository.StatusStore,
	results repository.ResultCache,
	itineraries repository.ItineraryRepository,
	generator usecase.PlanGenerator,
	images adapter.ImageSearchAdapter,
	groups adapter.GroupNotifier,
	logger *zerolog.Logger,
) *PlanGenerationWorker {
	l := logger.With().Str("component", "PlanGenerationWorker").Logger()
	return &PlanGenerationWorker{
		queue:       queue,
		status:      status,
		results:     results,
		itineraries: itineraries,
		generator:   generator,
		images:      images,
		groups:      groups,
		log:         &l,
	}
}

// Run blocks until ctx is cancelled or the queue is closed and drained.
func (w *PlanGenerationWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("plan generation worker started")
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrQueueClosed) {
				w.log.Info().Msg("plan generation worker stopping")
				return nil
			}
			return err
		}
		w.process(ctx, job)
	}
}

func (w *PlanGenerationWorker) process(ctx context.Context, job model.PlanGenerationJob) {
	log := w.log.With().Str("plan_id", job.PlanID).Logger()
	log.Info().Str("destination", job.Request.Destination).Msg("processing plan job")
	start := time.Now()

	prev := model.GenerationPending
	state := model.NewPlanGenerationState(job.PlanID)
	state.Status = model.GenerationInProgress
	state.CurrentStep = "started"
	w.writeStatus(ctx, state, &prev)

	state.ProgressPercent = 25
	state.CurrentStep = "generating itinerary"
	w.writeStatus(ctx, state, &prev)

	itinerary, err := w.generator.Generate(ctx, job.Request)
	if err != nil {
		w.fail(ctx, state, &prev, err, &log)
		return
	}

	state.ProgressPercent = 50
	state.CurrentStep = "itinerary generated"
	w.writeStatus(ctx, state, &prev)

	// Best-effort: a missing image never fails the job.
	if url, imgErr := w.images.GetDestinationImage(ctx, job.Request.Destination); imgErr != nil {
		log.Warn().Err(imgErr).Msg("destination image lookup failed")
	} else {
		itinerary.ImageURL = url
	}

	state.ProgressPercent = 75
	state.CurrentStep = "saving itinerary"
	w.writeStatus(ctx, state, &prev)

	// Persistence failures are swallowed: the generated result remains
	// authoritative and the job still completes.
	if saveErr := w.itineraries.Save(ctx, savedFrom(job, itinerary)); saveErr != nil {
		log.Error().Err(saveErr).Msg("itinerary persistence failed")
	}

	if cacheErr := w.results.StoreResult(ctx, job.PlanID, itinerary); cacheErr != nil {
		log.Error().Err(cacheErr).Msg("result cache store failed")
	}

	now := time.Now()
	state.Status = model.GenerationCompleted
	state.ProgressPercent = 100
	state.CurrentStep = "completed"
	state.CompletedAt = &now
	w.writeStatus(ctx, state, &prev)

	metrics.IncPlanJob(string(model.GenerationCompleted))
	log.Info().Dur("duration", time.Since(start)).Msg("plan job completed")
}

func (w *PlanGenerationWorker) fail(ctx context.Context, state *model.PlanGenerationState, prev *model.GenerationStatus, cause error, log *zerolog.Logger) {
	// Raw failure detail stays on the log side channel only.
	log.Error().Err(cause).Str("code", string(domain.CodeOf(cause))).Msg("plan job failed")

	now := time.Now()
	state.Status = model.GenerationFailed
	state.CurrentStep = "failed"
	state.CompletedAt = &now
	state.Error = failedStatusMessage
	w.writeStatus(ctx, state, prev)

	metrics.IncPlanJob(string(model.GenerationFailed))
}

// writeStatus persists the checkpoint and pushes it to the plan's
// notification group, refusing writes that would leave a terminal state
// or move backwards. The worker is the only writer for a plan id, so
// each write is a complete, untorn snapshot.
func (w *PlanGenerationWorker) writeStatus(ctx context.Context, state *model.PlanGenerationState, prev *model.GenerationStatus) {
	if !model.CanTransition(*prev, state.Status) {
		w.log.Error().
			Str("plan_id", state.PlanID).
			Str("from", string(*prev)).
			Str("to", string(state.Status)).
			Msg("illegal status transition dropped")
		return
	}
	*prev = state.Status
	snapshot := *state
	if err := w.status.Set(ctx, &snapshot); err != nil {
		w.log.Error().Err(err).Str("plan_id", state.PlanID).Msg("status write failed")
	}
	w.groups.BroadcastStatus(ctx, state.PlanID, &snapshot)
}

func savedFrom(job model.PlanGenerationJob, it *model.TravelItinerary) *model.SavedItinerary {
	return &model.SavedItinerary{
		PlanID:            job.PlanID,
		UserID:            job.UserID,
		AnonymousCookieID: job.AnonymousCookieID,
		Destination:       job.Request.Destination,
		StartDate:         job.Request.StartDate,
		EndDate:           job.Request.EndDate,
		Travelers:         job.Request.Travelers,
		Budget:            job.Request.Budget,
		Preferences:       job.Request.Preferences,
		GeneratedText:     it.GeneratedText,
		ImageURL:          it.ImageURL,
		Days:              it.Days,
	}
}
