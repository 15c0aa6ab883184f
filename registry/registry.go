// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"sync"
	"time"
)

// Session is the in-memory bookkeeping for one voting-phase competition.
// It exists only between start and completion/reset and is never persisted.
type Session struct {
	CompetitionID        string
	StartedAt            time.Time
	ExpectedParticipants int
	Participants         int
}

// Registry tracks competitions currently accepting votes. Absence of a
// session means the competition is not accepting votes, whatever the
// persisted phase says.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func New() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put creates or replaces the session for a competition.
func (r *Registry) Put(competitionID string, expectedParticipants int, startedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[competitionID] = &Session{
		CompetitionID:        competitionID,
		StartedAt:            startedAt,
		ExpectedParticipants: expectedParticipants,
	}
}

// Get returns a copy of the session, if one exists.
func (r *Registry) Get(competitionID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[competitionID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Remove destroys the session. Safe to call when none exists.
func (r *Registry) Remove(competitionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, competitionID)
}

// AddParticipant bumps the distinct-participant counter. Called once per
// accepted ballot; rejected duplicates never reach this path.
func (r *Registry) AddParticipant(competitionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[competitionID]; ok {
		session.Participants++
	}
}

// Active returns copies of all live sessions.
func (r *Registry) Active() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, *session)
	}
	return sessions
}
