package redis

import (
	"context"
	"encoding/json"
	"time"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
)

var _ repository.ResultCache = (*ResultCache)(nil)

// ResultCache holds completed itineraries keyed by plan id for a short
// window so clients that missed the completion push can still fetch them.
type ResultCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewResultCache(client RedisClient, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func resultKey(planID string) string { return "plan_result:" + planID }

func (c *ResultCache) StoreResult(ctx context.Context, planID string, it *model.TravelItinerary) error {
	data, err := json.Marshal(it)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resultKey(planID), data, c.ttl)
}

func (c *ResultCache) GetResult(ctx context.Context, planID string) (*model.TravelItinerary, error) {
	data, err := c.client.Get(ctx, resultKey(planID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var it model.TravelItinerary
	if err := json.Unmarshal([]byte(data), &it); err != nil {
		return nil, err
	}
	return &it, nil
}
