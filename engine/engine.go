// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"knockout/db"
	"knockout/hub"
	"knockout/models"
	"knockout/registry"
)

// Clock abstracts time.Now so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config carries the engine's timing knobs. A zero CheckDelay runs the
// elimination check synchronously after each vote (used by tests); the
// production default is set in cliparse.
type Config struct {
	ResetDelay time.Duration
	CheckDelay time.Duration
	Clock      Clock
}

// Engine owns the competition lifecycle: the vote ledger, the tally, the
// elimination state machine, and broadcast publication. Per-competition
// mutable state is guarded by a single-flight lock per competition id.
type Engine struct {
	store    *db.Store
	registry *registry.Registry
	hub      *hub.Hub

	clock      Clock
	resetDelay time.Duration
	checkDelay time.Duration

	mu            sync.Mutex
	evaluations   map[string]*sync.Mutex
	pendingChecks map[string]bool
	resetTimers   map[string]*time.Timer
}

func New(store *db.Store, reg *registry.Registry, h *hub.Hub, cfg Config) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}
	return &Engine{
		store:         store,
		registry:      reg,
		hub:           h,
		clock:         clock,
		resetDelay:    cfg.ResetDelay,
		checkDelay:    cfg.CheckDelay,
		evaluations:   make(map[string]*sync.Mutex),
		pendingChecks: make(map[string]bool),
		resetTimers:   make(map[string]*time.Timer),
	}
}

// CreateCompetition creates a competition in the setup phase with its teams
// at fixed ordinal positions.
func (e *Engine) CreateCompetition(ctx context.Context, name string, teamNames []string) (models.Competition, []models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Competition{}, nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(teamNames) < 2 {
		return models.Competition{}, nil, fmt.Errorf("%w: at least 2 team names required", ErrValidation)
	}

	comp := models.Competition{
		ID:        uuid.NewString(),
		Name:      name,
		Phase:     models.PhaseSetup,
		CreatedAt: e.clock.Now(),
	}

	teams := make([]models.Team, 0, len(teamNames))
	for i, teamName := range teamNames {
		teamName = strings.TrimSpace(teamName)
		if teamName == "" {
			return models.Competition{}, nil, fmt.Errorf("%w: team names must not be empty", ErrValidation)
		}
		teams = append(teams, models.Team{
			ID:            uuid.NewString(),
			CompetitionID: comp.ID,
			Name:          teamName,
			Position:      i + 1,
			Status:        models.TeamActive,
		})
	}

	if err := e.store.CreateCompetition(ctx, comp, teams); err != nil {
		return models.Competition{}, nil, err
	}

	slog.Info("competition created", "competition_id", comp.ID, "name", comp.Name, "teams", len(teams))
	return comp, teams, nil
}

// StartCompetition opens voting: setup → voting, all teams reinstated, and
// a registry session created with the expected-participant estimate.
func (e *Engine) StartCompetition(ctx context.Context, competitionID string, expectedParticipants int) ([]models.Team, error) {
	comp, err := e.store.GetCompetition(ctx, competitionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: competition %s", ErrNotFound, competitionID)
	}
	if err != nil {
		return nil, err
	}
	if comp.Phase != models.PhaseSetup {
		return nil, fmt.Errorf("%w: cannot start a %s competition", ErrInvalidState, comp.Phase)
	}

	if expectedParticipants <= 0 {
		expectedParticipants = defaultExpectedParticipants
	}

	now := e.clock.Now()
	if err := e.store.MarkStarted(ctx, competitionID, now); err != nil {
		return nil, err
	}
	if err := e.store.ReinstateTeams(ctx, competitionID); err != nil {
		return nil, err
	}

	e.registry.Put(competitionID, expectedParticipants, now)

	teams, err := e.store.GetTeams(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	e.hub.Publish(competitionID, hub.Event{
		Kind: hub.EventCompetitionStarted,
		Data: models.CompetitionStartedPayload{CompetitionID: competitionID, Teams: activeOnly(teams)},
	})

	slog.Info("competition started",
		"competition_id", competitionID,
		"expected_participants", expectedParticipants,
	)
	return teams, nil
}

// SubmitVote records one ballot for (competition, voter session).
// Preconditions run in order: competition must be accepting votes, then the
// session must not have voted. The database uniqueness constraint closes
// the race between concurrent submissions of the same session: the loser
// gets ErrAlreadyVoted, never a duplicate row.
func (e *Engine) SubmitVote(ctx context.Context, competitionID, teamID, voterSession, originHash string) (models.Vote, error) {
	if competitionID == "" || teamID == "" || voterSession == "" {
		return models.Vote{}, fmt.Errorf("%w: competition_id, team_id and voter_session are required", ErrValidation)
	}

	comp, err := e.store.GetCompetition(ctx, competitionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, fmt.Errorf("%w: competition %s", ErrNotFound, competitionID)
	}
	if err != nil {
		return models.Vote{}, err
	}
	if _, ok := e.registry.Get(competitionID); !ok || comp.Phase != models.PhaseVoting {
		return models.Vote{}, ErrNotVoting
	}

	team, err := e.store.GetTeam(ctx, teamID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}
	if err != nil {
		return models.Vote{}, err
	}
	if team.CompetitionID != competitionID {
		return models.Vote{}, fmt.Errorf("%w: team %s does not belong to competition %s", ErrNotFound, teamID, competitionID)
	}

	if voted, err := e.store.HasVoted(ctx, competitionID, voterSession); err != nil {
		return models.Vote{}, err
	} else if voted {
		return models.Vote{}, ErrAlreadyVoted
	}

	vote := models.Vote{
		ID:            uuid.NewString(),
		CompetitionID: competitionID,
		TeamID:        teamID,
		VoterSession:  voterSession,
		VotedAt:       e.clock.Now(),
		OriginHash:    originHash,
	}
	if err := e.store.RecordVote(ctx, vote); err != nil {
		if db.IsUniqueViolation(err) {
			return models.Vote{}, ErrAlreadyVoted
		}
		return models.Vote{}, fmt.Errorf("failed to record vote: %w", err)
	}
	e.registry.AddParticipant(competitionID)

	if teams, err := e.Tally(ctx, competitionID); err == nil {
		e.hub.Publish(competitionID, hub.Event{
			Kind: hub.EventVoteUpdate,
			Data: models.VoteUpdatePayload{CompetitionID: competitionID, Teams: teams},
		})
	} else {
		slog.Error("failed to refresh tally after vote", "error", err, "competition_id", competitionID)
	}

	e.scheduleCheck(competitionID)

	slog.Info("vote recorded", "competition_id", competitionID, "team_id", teamID, "vote_id", vote.ID)
	return vote, nil
}

// Competition loads one competition by id.
func (e *Engine) Competition(ctx context.Context, competitionID string) (models.Competition, error) {
	comp, err := e.store.GetCompetition(ctx, competitionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Competition{}, fmt.Errorf("%w: competition %s", ErrNotFound, competitionID)
	}
	return comp, err
}

// Tally returns the current per-team standings in display order.
func (e *Engine) Tally(ctx context.Context, competitionID string) ([]models.Team, error) {
	teams, err := e.store.GetTeams(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		if _, err := e.store.GetCompetition(ctx, competitionID); errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: competition %s", ErrNotFound, competitionID)
		} else if err != nil {
			return nil, err
		}
	}
	return teams, nil
}

// Snapshot returns the point-in-time state a new subscriber converges from.
func (e *Engine) Snapshot(ctx context.Context, competitionID string) (models.CurrentStatePayload, error) {
	comp, err := e.store.GetCompetition(ctx, competitionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CurrentStatePayload{}, fmt.Errorf("%w: competition %s", ErrNotFound, competitionID)
	}
	if err != nil {
		return models.CurrentStatePayload{}, err
	}

	teams, err := e.Tally(ctx, competitionID)
	if err != nil {
		return models.CurrentStatePayload{}, err
	}

	snapshot := models.CurrentStatePayload{
		CompetitionID: competitionID,
		Phase:         comp.Phase,
		Teams:         teams,
	}
	if comp.WinnerTeamID != nil {
		for i := range teams {
			if teams[i].ID == *comp.WinnerTeamID {
				snapshot.Winner = &teams[i]
				break
			}
		}
	}
	return snapshot, nil
}

// Subscribe joins a competition's room and immediately delivers a snapshot
// to the new subscriber only, so late joiners converge without waiting for
// the next vote.
func (e *Engine) Subscribe(ctx context.Context, competitionID string, sub hub.Subscriber) error {
	e.hub.Subscribe(competitionID, sub)

	snapshot, err := e.Snapshot(ctx, competitionID)
	if err != nil {
		return err
	}
	sub.Deliver(hub.Event{Kind: hub.EventCurrentState, Data: snapshot})
	return nil
}

// Unsubscribe leaves a competition's room.
func (e *Engine) Unsubscribe(competitionID string, sub hub.Subscriber) {
	e.hub.Unsubscribe(competitionID, sub)
}

// ResetCompetition forces a competition back to setup from any phase. All
// teams are reinstated with zero votes, completion metadata is cleared, the
// registry session is torn down, and any pending round-reset timer is
// cancelled so it cannot corrupt the fresh state. The vote ledger is kept
// as permanent history.
func (e *Engine) ResetCompetition(ctx context.Context, competitionID string) error {
	_, err := e.store.GetCompetition(ctx, competitionID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: competition %s", ErrNotFound, competitionID)
	}
	if err != nil {
		return err
	}

	e.dropEvalState(competitionID)

	if err := e.store.MarkSetup(ctx, competitionID); err != nil {
		return err
	}
	if err := e.store.ReinstateTeams(ctx, competitionID); err != nil {
		return err
	}
	e.registry.Remove(competitionID)

	e.hub.Publish(competitionID, hub.Event{
		Kind: hub.EventCompetitionReset,
		Data: models.CompetitionResetPayload{CompetitionID: competitionID},
	})

	slog.Info("competition reset", "competition_id", competitionID)
	return nil
}

func activeOnly(teams []models.Team) []models.Team {
	active := make([]models.Team, 0, len(teams))
	for _, team := range teams {
		if team.Status == models.TeamActive {
			active = append(active, team)
		}
	}
	return active
}
