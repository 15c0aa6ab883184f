// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import "sync"

// EventKind names one of the state-change notifications pushed to rooms.
type EventKind string

const (
	EventVoteUpdate          EventKind = "voteUpdate"
	EventTeamEliminated      EventKind = "teamEliminated"
	EventRoundReset          EventKind = "roundReset"
	EventCompetitionStarted  EventKind = "competitionStarted"
	EventCompetitionComplete EventKind = "competitionComplete"
	EventCompetitionReset    EventKind = "competitionReset"

	// EventCurrentState is delivered only to a newly joined subscriber, never
	// broadcast to a room.
	EventCurrentState EventKind = "currentState"
)

// Event is the typed envelope delivered to subscribers.
type Event struct {
	Kind EventKind `json:"event"`
	Data any       `json:"data"`
}

// Subscriber receives events for rooms it has joined. Deliver must not
// block: delivery is best-effort at-most-once, and a subscriber that falls
// behind drops events and reconverges from the snapshot on its next join.
type Subscriber interface {
	Deliver(Event)
}

// Hub fans state-change events out to per-competition rooms.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Subscriber]struct{}
}

func New() *Hub {
	return &Hub{rooms: make(map[string]map[Subscriber]struct{})}
}

// Subscribe adds a subscriber to a competition's room.
func (h *Hub) Subscribe(competitionID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[competitionID]
	if !ok {
		room = make(map[Subscriber]struct{})
		h.rooms[competitionID] = room
	}
	room[sub] = struct{}{}
}

// Unsubscribe removes a subscriber from a room. Empty rooms are dropped.
func (h *Hub) Unsubscribe(competitionID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[competitionID]
	if !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, competitionID)
	}
}

// Publish delivers an event to every subscriber in the room. Order of
// delivery to a single subscriber follows the order of Publish calls for
// that competition; nothing is guaranteed across competitions.
func (h *Hub) Publish(competitionID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.rooms[competitionID] {
		sub.Deliver(event)
	}
}

// RoomSize reports the current subscriber count for a competition.
func (h *Hub) RoomSize(competitionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[competitionID])
}
