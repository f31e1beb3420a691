package redis

import (
	"context"
	"encoding/json"
	"time"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
)

var _ repository.StatusStore = (*StatusStore)(nil)

// StatusStore keeps per-plan progress records with a fixed retention
// window. Entries silently expire; a missing key is reported as
// domain.ErrNotFound and callers must treat it as unknown/expired.
type StatusStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewStatusStore(client RedisClient, ttl time.Duration) *StatusStore {
	return &StatusStore{client: client, ttl: ttl}
}

func statusKey(planID string) string { return "plan_status:" + planID }

func (s *StatusStore) Set(ctx context.Context, state *model.PlanGenerationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statusKey(state.PlanID), data, s.ttl)
}

func (s *StatusStore) Get(ctx context.Context, planID string) (*model.PlanGenerationState, error) {
	data, err := s.client.Get(ctx, statusKey(planID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var state model.PlanGenerationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}
