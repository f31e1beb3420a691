package usecase

import (
	"encoding/json"
	"strings"

	"travel-ai-planner/internal/domain/model"
)

const (
	// maxHistoryTurns bounds how much caller-supplied chat history is
	// forwarded as model context.
	maxHistoryTurns = 5

	// maxRawPlanBytes is the truncation budget when the plan payload
	// cannot be parsed into a compact form.
	maxRawPlanBytes = 4000
)

// CompressHistory deserializes caller-supplied history and keeps only the
// most recent turns in original order. Parse failures are soft: malformed
// input yields empty history, never an error.
func CompressHistory(serialized string) []model.ChatMessage {
	if strings.TrimSpace(serialized) == "" {
		return nil
	}
	var history []model.ChatMessage
	if err := json.Unmarshal([]byte(serialized), &history); err != nil {
		return nil
	}
	out := history
	if len(out) > maxHistoryTurns {
		out = out[len(out)-maxHistoryTurns:]
	}
	for i := range out {
		switch strings.ToLower(out[i].Role) {
		case model.RoleAssistant, "model", "ai":
			out[i].Role = model.RoleAssistant
		default:
			out[i].Role = model.RoleUser
		}
	}
	return out
}

// compactDay is the bounded per-day shape forwarded as plan context.
type compactDay struct {
	Day       int      `json:"day"`
	Morning   []string `json:"morning"`
	Afternoon []string `json:"afternoon"`
	Evening   []string `json:"evening"`
}

// CompressPlan reduces a full plan payload to day/morning/afternoon/evening
// lists to bound prompt size. Malformed input falls back to truncating the
// raw payload instead of failing the request.
func CompressPlan(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	var full struct {
		Days []struct {
			Day       int      `json:"day"`
			Morning   []string `json:"morning"`
			Afternoon []string `json:"afternoon"`
			Evening   []string `json:"evening"`
		} `json:"days"`
	}
	if err := json.Unmarshal([]byte(raw), &full); err != nil || len(full.Days) == 0 {
		return truncate(raw, maxRawPlanBytes)
	}

	compact := make([]compactDay, 0, len(full.Days))
	for _, d := range full.Days {
		compact = append(compact, compactDay(d))
	}
	b, err := json.Marshal(compact)
	if err != nil {
		return truncate(raw, maxRawPlanBytes)
	}
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
