// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles schema creation and all durable storage operations.

# Schema Creation

CreateSchema initializes all required tables for the selected driver:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Two dialects are maintained: sqlite (default, pure-Go driver) and postgres.

# Store

Store wraps *sql.DB with the operations the engine requires of its
persistence collaborator:

	store := db.New(conn, db.DriverSQLite)

Queries are written with ? placeholders and rebound to $N for postgres.

# Tables

  - competitions: lifecycle phase and completion metadata
  - teams: ordinal position, active/eliminated status, live vote counter
  - votes: permanent ballot ledger, one row per (competition, voter session)
  - competition_results: immutable final rankings

# Invariants Enforced Here

  - UNIQUE (competition_id, voter_session) on votes makes duplicate
    detection and insertion a single atomic operation; IsUniqueViolation
    classifies the constraint error for both drivers.
  - teams.votes is the current-round counter: bumped in the same
    transaction that appends the ledger row (RecordVote), zeroed for
    surviving teams at round boundaries (ZeroActiveTeamVotes), and fully
    reset only by ReinstateTeams. A ballot can never spend a session
    without moving the counter.
  - votes rows are never deleted; resets touch counters only.
*/
package db
