package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/infra/metrics"
)

const (
	EventStreamStart = "StreamStart"
	EventStreamChunk = "StreamChunk"
	EventStreamEnd   = "StreamEnd"
	EventError       = "Error"
	EventStatus      = "Status"
)

// Event is one push to a subscriber. Text carries chunk/error payloads;
// State carries group status broadcasts.
type Event struct {
	Kind  string                     `json:"kind"`
	Text  string                     `json:"text,omitempty"`
	State *model.PlanGenerationState `json:"state,omitempty"`
}

var (
	_ adapter.StreamNotifier = (*Hub)(nil)
	_ adapter.GroupNotifier  = (*Hub)(nil)
)

// Hub is the in-process notification transport. Connections subscribe
// under an id; group membership scopes a connection to one plan's status
// broadcasts. Membership changes take effect before the next broadcast
// because joins and broadcasts serialize on the same lock.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]chan Event
	groups map[string]map[string]struct{} // planID -> set of connIDs
	log    *zerolog.Logger
}

func NewHub(logger *zerolog.Logger) *Hub {
	l := logger.With().Str("component", "NotifyHub").Logger()
	return &Hub{
		conns:  map[string]chan Event{},
		groups: map[string]map[string]struct{}{},
		log:    &l,
	}
}

// Subscribe registers a connection and returns its event channel. The
// buffer absorbs bursts; a persistently slow consumer loses events rather
// than blocking producers.
func (h *Hub) Subscribe(connID string) <-chan Event {
	ch := make(chan Event, 64)
	h.mu.Lock()
	if old, ok := h.conns[connID]; ok {
		close(old)
	}
	h.conns[connID] = ch
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.conns[connID]; ok {
		close(ch)
		delete(h.conns, connID)
	}
	for planID, members := range h.groups {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, planID)
		}
	}
}

func (h *Hub) JoinGroup(connID, planID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[connID]; !ok {
		return
	}
	members, ok := h.groups[planID]
	if !ok {
		members = map[string]struct{}{}
		h.groups[planID] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) LeaveGroup(connID, planID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.groups[planID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.groups, planID)
		}
	}
}

func (h *Hub) BroadcastStatus(ctx context.Context, planID string, state *model.PlanGenerationState) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID := range h.groups[planID] {
		h.deliverLocked(connID, Event{Kind: EventStatus, State: state})
	}
}

func (h *Hub) StreamStart(ctx context.Context, callerID string) error {
	return h.deliver(callerID, Event{Kind: EventStreamStart})
}

func (h *Hub) StreamChunk(ctx context.Context, callerID, text string) error {
	return h.deliver(callerID, Event{Kind: EventStreamChunk, Text: text})
}

func (h *Hub) StreamEnd(ctx context.Context, callerID, fullText string) error {
	return h.deliver(callerID, Event{Kind: EventStreamEnd, Text: fullText})
}

func (h *Hub) StreamError(ctx context.Context, callerID, message string) error {
	return h.deliver(callerID, Event{Kind: EventError, Text: message})
}

func (h *Hub) deliver(connID string, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.conns[connID]; !ok {
		return domain.ErrNotFound
	}
	h.deliverLocked(connID, ev)
	return nil
}

func (h *Hub) deliverLocked(connID string, ev Event) {
	ch, ok := h.conns[connID]
	if !ok {
		return
	}
	select {
	case ch <- ev:
		metrics.IncStreamEvent(ev.Kind)
	default:
		h.log.Warn().Str("conn_id", connID).Str("kind", ev.Kind).Msg("subscriber too slow, event dropped")
	}
}
