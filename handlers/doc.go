// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the knockout API.

# Handler Types

Each handler is a struct with engine and config dependencies:

  - CompetitionHandler: Competition lifecycle (create, start, reset, inspect)
  - VoteHandler: Ballot submission
  - HistoryHandler: Past competitions and final rankings

Handlers are created via constructor functions:

	competitionHandler := handlers.NewCompetitionHandler(eng, cfg)

# Competition Lifecycle

Competitions progress through three phases: setup → voting → completed

	POST /api/competition            → Create (returns voting_url)
	POST /api/competition/{id}/start → Start (opens voting)
	POST /api/competition/{id}/reset → Reset (back to setup, any phase)
	GET  /api/competition/{id}       → Get (phase, teams, winner)

# Voting Flow

Voters submit one ballot per competition:

	POST /api/vote → Submit

The body carries competition_id, team_id and the voter's self-generated
session token. A second ballot from the same session gets 409 Conflict.
Elimination and completion happen inside the engine after an accepted
ballot; clients observe them over the live event stream.

# Error Mapping

Engine errors map to HTTP status codes with errors.Is: validation
failures are 400, unknown ids are 404, phase conflicts and duplicate
ballots are 409, anything else is a 500.
*/
package handlers
