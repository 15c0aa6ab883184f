// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Competition phase constants
const (
	PhaseSetup     = "setup"
	PhaseVoting    = "voting"
	PhaseCompleted = "completed"
)

// Team status constants
const (
	TeamActive     = "active"
	TeamEliminated = "eliminated"
)

// Request types

type CreateCompetitionRequest struct {
	Name      string   `json:"name"`
	TeamNames []string `json:"team_names"`
}

type StartCompetitionRequest struct {
	ExpectedParticipants int `json:"expected_participants"`
}

type SubmitVoteRequest struct {
	CompetitionID string `json:"competition_id"`
	TeamID        string `json:"team_id"`
	VoterSession  string `json:"voter_session"`
}

// Response types

type CreateCompetitionResponse struct {
	CompetitionID string `json:"competition_id"`
	Name          string `json:"name"`
	VotingURL     string `json:"voting_url"`
}

type SubmitVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

type CompetitionResponse struct {
	Competition Competition `json:"competition"`
	Teams       []Team      `json:"teams"`
	Winner      *Team       `json:"winner,omitempty"`
	VotingURL   string      `json:"voting_url"`
}

type HistoryEntry struct {
	CompetitionID     string       `json:"competition_id"`
	Name              string       `json:"name"`
	Phase             string       `json:"phase"`
	CreatedAt         time.Time    `json:"created_at"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	CompletedAgo      string       `json:"completed_ago,omitempty"`
	FinalRanking      []RankedTeam `json:"final_ranking,omitempty"`
	TotalVotes        int          `json:"total_votes,omitempty"`
	TotalParticipants int          `json:"total_participants,omitempty"`
	DurationMinutes   int          `json:"duration_minutes,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Competition struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Phase        string     `json:"phase"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	WinnerTeamID *string    `json:"winner_team_id,omitempty"`
}

type Team struct {
	ID            string     `json:"id"`
	CompetitionID string     `json:"competition_id"`
	Name          string     `json:"name"`
	Position      int        `json:"position"`
	Status        string     `json:"status"`
	Votes         int        `json:"votes"`
	EliminatedAt  *time.Time `json:"eliminated_at,omitempty"`
}

type Vote struct {
	ID            string    `json:"id"`
	CompetitionID string    `json:"competition_id"`
	TeamID        string    `json:"team_id"`
	VoterSession  string    `json:"-"` // Never expose in JSON
	VotedAt       time.Time `json:"voted_at"`
	OriginHash    string    `json:"-"` // Never expose in JSON
}

// RankedTeam is one row of a final ranking, winner first.
type RankedTeam struct {
	TeamID     string `json:"team_id"`
	TeamName   string `json:"team_name"`
	FinalVotes int    `json:"final_votes"`
	Status     string `json:"status"`
}

// CompetitionResult is the immutable record persisted at completion.
type CompetitionResult struct {
	ID                string       `json:"id"`
	CompetitionID     string       `json:"competition_id"`
	FinalRanking      []RankedTeam `json:"final_ranking"`
	TotalVotes        int          `json:"total_votes"`
	TotalParticipants int          `json:"total_participants"`
	DurationMinutes   int          `json:"duration_minutes"`
	CreatedAt         time.Time    `json:"created_at"`
}

// Broadcast payload types

type VoteUpdatePayload struct {
	CompetitionID string `json:"competition_id"`
	Teams         []Team `json:"teams"`
}

type TeamEliminatedPayload struct {
	CompetitionID  string `json:"competition_id"`
	EliminatedTeam Team   `json:"eliminated_team"`
	RemainingTeams []Team `json:"remaining_teams"`
}

type RoundResetPayload struct {
	CompetitionID string `json:"competition_id"`
	Teams         []Team `json:"teams"`
}

type CompetitionStartedPayload struct {
	CompetitionID string `json:"competition_id"`
	Teams         []Team `json:"teams"`
}

type CompetitionCompletePayload struct {
	CompetitionID string       `json:"competition_id"`
	Winner        Team         `json:"winner"`
	FinalRanking  []RankedTeam `json:"final_ranking"`
}

type CompetitionResetPayload struct {
	CompetitionID string `json:"competition_id"`
}

type CurrentStatePayload struct {
	CompetitionID string `json:"competition_id"`
	Phase         string `json:"phase"`
	Teams         []Team `json:"teams"`
	Winner        *Team  `json:"winner,omitempty"`
}
