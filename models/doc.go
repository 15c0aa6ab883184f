// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, domain, and broadcast types.

# Request Types

Types for parsing incoming JSON:

  - CreateCompetitionRequest: name, team_names (at least 2)
  - StartCompetitionRequest: expected_participants
  - SubmitVoteRequest: competition_id, team_id, voter_session

# Response Types

Types for JSON responses:

  - CreateCompetitionResponse: competition_id, name, voting_url
  - SubmitVoteResponse: vote_id, message
  - CompetitionResponse: competition, teams, winner, voting_url
  - HistoryEntry: per-competition historical summary
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Competition: lifecycle state (setup → voting → completed)
  - Team: ordinal position, active/eliminated status, round vote counter
  - Vote: one ledger entry per (competition, voter session)
  - RankedTeam: one row of a final ranking
  - CompetitionResult: immutable record created at completion

# Broadcast Payloads

One payload struct per event kind pushed to subscribers:

  - VoteUpdatePayload, TeamEliminatedPayload, RoundResetPayload
  - CompetitionStartedPayload, CompetitionCompletePayload,
    CompetitionResetPayload
  - CurrentStatePayload: the snapshot a new subscriber receives

# Constants

Phase values:

	PhaseSetup     = "setup"
	PhaseVoting    = "voting"
	PhaseCompleted = "completed"

Team status:

	TeamActive     = "active"
	TeamEliminated = "eliminated"
*/
package models
