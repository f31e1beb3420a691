package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
)

var _ repository.ItineraryRepository = (*itineraryRepo)(nil)

type itineraryRepo struct {
	pool *pgxpool.Pool
}

func NewItineraryRepo(pool *pgxpool.Pool) *itineraryRepo {
	return &itineraryRepo{pool: pool}
}

func (r *itineraryRepo) Save(ctx context.Context, it *model.SavedItinerary) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now()
	}
	days, err := json.Marshal(it.Days)
	if err != nil {
		return dbErr("marshal itinerary days", err)
	}

	const q = `
INSERT INTO itineraries (id, plan_id, user_id, anonymous_cookie_id, destination, start_date, end_date,
                         travelers, budget, preferences, generated_text, image_url, days, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (plan_id) DO UPDATE SET
  generated_text = EXCLUDED.generated_text,
  image_url = EXCLUDED.image_url,
  days = EXCLUDED.days;`

	_, err = r.pool.Exec(ctx, q,
		it.ID, it.PlanID, nullable(it.UserID), nullable(it.AnonymousCookieID),
		it.Destination, it.StartDate, it.EndDate,
		it.Travelers, it.Budget, it.Preferences,
		it.GeneratedText, nullable(it.ImageURL), days, it.CreatedAt)
	if err != nil {
		return dbErr("itinerary save failed", err)
	}
	return nil
}

func (r *itineraryRepo) FindByPlanID(ctx context.Context, planID string) (*model.SavedItinerary, error) {
	const q = `
SELECT id, plan_id, user_id, anonymous_cookie_id, destination, start_date, end_date,
       travelers, budget, preferences, generated_text, image_url, days, created_at
FROM itineraries
WHERE plan_id = $1;`

	var (
		it       model.SavedItinerary
		userID   *string
		cookieID *string
		imageURL *string
		days     []byte
	)
	err := r.pool.QueryRow(ctx, q, planID).Scan(
		&it.ID, &it.PlanID, &userID, &cookieID, &it.Destination, &it.StartDate, &it.EndDate,
		&it.Travelers, &it.Budget, &it.Preferences, &it.GeneratedText, &imageURL, &days, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, dbErr("itinerary find failed", err)
	}
	if userID != nil {
		it.UserID = *userID
	}
	if cookieID != nil {
		it.AnonymousCookieID = *cookieID
	}
	if imageURL != nil {
		it.ImageURL = *imageURL
	}
	if len(days) > 0 {
		if err := json.Unmarshal(days, &it.Days); err != nil {
			return nil, dbErr("unmarshal itinerary days", err)
		}
	}
	return &it, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
