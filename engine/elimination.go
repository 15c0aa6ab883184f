// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"knockout/hub"
	"knockout/models"
)

const (
	defaultExpectedParticipants = 50
	minVotesForElimination      = 10
)

// scheduleCheck queues an elimination check after the configured delay so
// the voter's request returns before evaluation work runs. A zero delay
// evaluates synchronously.
func (e *Engine) scheduleCheck(competitionID string) {
	if e.checkDelay <= 0 {
		e.CheckElimination(context.Background(), competitionID)
		return
	}
	time.AfterFunc(e.checkDelay, func() {
		e.CheckElimination(context.Background(), competitionID)
	})
}

// evalLock returns the single-flight lock for one competition.
func (e *Engine) evalLock(competitionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.evaluations[competitionID]
	if !ok {
		lock = new(sync.Mutex)
		e.evaluations[competitionID] = lock
	}
	return lock
}

// CheckElimination runs evaluation cycles for a competition.
//
// At most one cycle is in flight per competition. A trigger that loses the
// lock is not evaluated inline, but it is never lost either: it leaves a
// deferred mark, and the cycle holding the lock keeps evaluating until no
// mark remains, so a vote that committed after the in-flight cycle read
// its state still gets considered. Any persistence failure aborts the
// cycle without broadcasting partial state; the next trigger re-evaluates
// from durable state.
func (e *Engine) CheckElimination(ctx context.Context, competitionID string) {
	e.markPending(competitionID)

	lock := e.evalLock(competitionID)
	if !lock.TryLock() {
		return
	}
	defer lock.Unlock()

	for e.takePending(competitionID) {
		e.evaluate(ctx, competitionID)
	}
}

// markPending records that a competition needs an evaluation cycle.
func (e *Engine) markPending(competitionID string) {
	e.mu.Lock()
	e.pendingChecks[competitionID] = true
	e.mu.Unlock()
}

// takePending consumes the deferred mark, reporting whether one was set.
func (e *Engine) takePending(competitionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.pendingChecks[competitionID] {
		return false
	}
	delete(e.pendingChecks, competitionID)
	return true
}

func (e *Engine) evaluate(ctx context.Context, competitionID string) {
	comp, err := e.store.GetCompetition(ctx, competitionID)
	if err != nil {
		slog.Error("elimination check aborted", "error", err, "competition_id", competitionID)
		return
	}
	teams, err := e.store.GetTeams(ctx, competitionID)
	if err != nil {
		slog.Error("elimination check aborted", "error", err, "competition_id", competitionID)
		return
	}

	active := activeOnly(teams)

	// Terminal condition first: one survivor completes the competition even
	// if the phase guard below would otherwise skip evaluation.
	if len(active) == 1 {
		e.complete(ctx, comp, teams)
		return
	}
	if len(active) == 0 || comp.Phase != models.PhaseVoting {
		return
	}

	session, ok := e.registry.Get(competitionID)
	if !ok {
		return
	}

	totalVotes := 0
	for _, team := range active {
		totalVotes += team.Votes
	}
	threshold := eliminationThreshold(session.ExpectedParticipants)
	if totalVotes < threshold {
		return
	}

	// Position is only a secondary key to keep the order deterministic;
	// elimination itself requires a strict vote difference.
	sort.Slice(active, func(i, j int) bool {
		if active[i].Votes != active[j].Votes {
			return active[i].Votes < active[j].Votes
		}
		return active[i].Position < active[j].Position
	})

	lowest, secondLowest := active[0], active[1]
	if lowest.Votes >= secondLowest.Votes {
		// Exact tie for last place: never eliminate on a coin-flip. The next
		// vote that breaks the tie re-triggers evaluation.
		return
	}

	now := e.clock.Now()

	if len(active) == 2 {
		// Final round: the trailing team is recorded as eliminated but no
		// elimination event fires - subscribers see only the completion.
		if err := e.store.EliminateTeam(ctx, lowest.ID, now); err != nil {
			slog.Error("elimination check aborted", "error", err, "competition_id", competitionID)
			return
		}
		teams, err = e.store.GetTeams(ctx, competitionID)
		if err != nil {
			slog.Error("elimination check aborted", "error", err, "competition_id", competitionID)
			return
		}
		e.complete(ctx, comp, teams)
		return
	}

	if err := e.store.EliminateTeam(ctx, lowest.ID, now); err != nil {
		slog.Error("elimination check aborted", "error", err, "competition_id", competitionID)
		return
	}

	lowest.Status = models.TeamEliminated
	lowest.EliminatedAt = &now
	remaining := make([]models.Team, 0, len(active)-1)
	for _, team := range active[1:] {
		remaining = append(remaining, team)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Position < remaining[j].Position })

	e.hub.Publish(competitionID, hub.Event{
		Kind: hub.EventTeamEliminated,
		Data: models.TeamEliminatedPayload{
			CompetitionID:  competitionID,
			EliminatedTeam: lowest,
			RemainingTeams: remaining,
		},
	})

	slog.Info("team eliminated",
		"competition_id", competitionID,
		"team_id", lowest.ID,
		"team_name", lowest.Name,
		"votes", lowest.Votes,
	)

	e.scheduleRoundReset(competitionID)
}

// eliminationThreshold is the minimum number of current-round votes before
// an elimination may fire: at least 10, or 10% of expected participants.
// The percentage is fractional while votes are whole, so it rounds up;
// 115 expected means 11.5, and 11 votes do not reach it.
func eliminationThreshold(expectedParticipants int) int {
	threshold := (expectedParticipants + 9) / 10
	if threshold < minVotesForElimination {
		return minVotesForElimination
	}
	return threshold
}

// scheduleRoundReset arms the delayed reset that opens the next round. The
// delay gives subscribers time to animate the elimination before counters
// visibly zero out.
func (e *Engine) scheduleRoundReset(competitionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if timer, ok := e.resetTimers[competitionID]; ok {
		timer.Stop()
	}
	e.resetTimers[competitionID] = time.AfterFunc(e.resetDelay, func() {
		e.roundReset(competitionID)
	})
}

// dropEvalState forgets a competition's single-flight lock, deferred-check
// mark and pending round-reset timer. Runs whenever a competition leaves
// the voting phase, so finished competitions do not accumulate entries.
func (e *Engine) dropEvalState(competitionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.evaluations, competitionID)
	delete(e.pendingChecks, competitionID)
	if timer, ok := e.resetTimers[competitionID]; ok {
		timer.Stop()
		delete(e.resetTimers, competitionID)
	}
}

// roundReset zeroes the surviving teams' counters and announces the new
// round. Eliminated teams and the vote ledger are untouched.
func (e *Engine) roundReset(competitionID string) {
	e.mu.Lock()
	delete(e.resetTimers, competitionID)
	e.mu.Unlock()

	ctx := context.Background()
	if err := e.store.ZeroActiveTeamVotes(ctx, competitionID); err != nil {
		slog.Error("round reset aborted", "error", err, "competition_id", competitionID)
		return
	}
	teams, err := e.store.GetTeams(ctx, competitionID)
	if err != nil {
		slog.Error("round reset aborted", "error", err, "competition_id", competitionID)
		return
	}

	e.hub.Publish(competitionID, hub.Event{
		Kind: hub.EventRoundReset,
		Data: models.RoundResetPayload{CompetitionID: competitionID, Teams: activeOnly(teams)},
	})

	slog.Info("round reset", "competition_id", competitionID)
}

// complete finishes a competition: exactly one active team remains and
// becomes the winner. The final ranking places the winner first and the
// eliminated teams in reverse elimination order.
func (e *Engine) complete(ctx context.Context, comp models.Competition, teams []models.Team) {
	if comp.Phase == models.PhaseCompleted {
		e.dropEvalState(comp.ID)
		return
	}

	var winner *models.Team
	for i := range teams {
		if teams[i].Status == models.TeamActive {
			if winner != nil {
				return
			}
			winner = &teams[i]
		}
	}
	if winner == nil {
		return
	}

	now := e.clock.Now()
	if err := e.store.MarkCompleted(ctx, comp.ID, winner.ID, now); err != nil {
		slog.Error("completion aborted", "error", err, "competition_id", comp.ID)
		return
	}

	ranked := make([]models.Team, len(teams))
	copy(ranked, teams)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Status != ranked[j].Status {
			return ranked[i].Status == models.TeamActive
		}
		ti, tj := ranked[i].EliminatedAt, ranked[j].EliminatedAt
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})

	ranking := make([]models.RankedTeam, 0, len(ranked))
	totalVotes := 0
	for _, team := range ranked {
		ranking = append(ranking, models.RankedTeam{
			TeamID:     team.ID,
			TeamName:   team.Name,
			FinalVotes: team.Votes,
			Status:     team.Status,
		})
		totalVotes += team.Votes
	}

	result := models.CompetitionResult{
		ID:            uuid.NewString(),
		CompetitionID: comp.ID,
		FinalRanking:  ranking,
		TotalVotes:    totalVotes,
		CreatedAt:     now,
	}
	if session, ok := e.registry.Get(comp.ID); ok {
		result.TotalParticipants = session.Participants
		result.DurationMinutes = int(now.Sub(session.StartedAt).Round(time.Minute) / time.Minute)
	}
	if err := e.store.SaveResult(ctx, result); err != nil {
		// The competition is already completed durably; losing the summary
		// row is logged rather than unwinding the terminal transition.
		slog.Error("failed to save competition result", "error", err, "competition_id", comp.ID)
	}

	e.dropEvalState(comp.ID)
	e.registry.Remove(comp.ID)

	e.hub.Publish(comp.ID, hub.Event{
		Kind: hub.EventCompetitionComplete,
		Data: models.CompetitionCompletePayload{
			CompetitionID: comp.ID,
			Winner:        *winner,
			FinalRanking:  ranking,
		},
	})

	slog.Info("competition completed",
		"competition_id", comp.ID,
		"winner_team_id", winner.ID,
		"winner_name", winner.Name,
	)
}
