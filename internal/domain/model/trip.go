package model

import "time"

// TravelPlanRequest is the caller-supplied description of the trip to plan.
type TravelPlanRequest struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Travelers   int      `json:"travelers"`
	Budget      string   `json:"budget"`
	Preferences []string `json:"preferences,omitempty"`
}

// ItineraryDay is one generated day split into three blocks.
type ItineraryDay struct {
	Day       int      `json:"day"`
	Morning   []string `json:"morning"`
	Afternoon []string `json:"afternoon"`
	Evening   []string `json:"evening"`
}

// TravelItinerary is the structured result of one generation.
type TravelItinerary struct {
	Destination   string         `json:"destination"`
	Days          []ItineraryDay `json:"days"`
	GeneratedText string         `json:"generatedText"`
	ImageURL      string         `json:"imageUrl,omitempty"`
	ModelName     string         `json:"modelName,omitempty"`
}

// SavedItinerary is the durable record written after a successful
// generation, keyed by the job's external plan id.
type SavedItinerary struct {
	ID                string
	PlanID            string
	UserID            string
	AnonymousCookieID string
	Destination       string
	StartDate         string
	EndDate           string
	Travelers         int
	Budget            string
	Preferences       []string
	GeneratedText     string
	ImageURL          string
	Days              []ItineraryDay
	CreatedAt         time.Time
}
