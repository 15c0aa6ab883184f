// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, driver string) error {
	ddl := schemaSQLite
	if driver == DriverPostgres {
		ddl = schemaPostgres
	}
	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schemaSQLite = `
-- Competitions
CREATE TABLE IF NOT EXISTS competitions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phase TEXT NOT NULL DEFAULT 'setup' CHECK (phase IN ('setup', 'voting', 'completed')),
    created_at TIMESTAMP NOT NULL,
    started_at TIMESTAMP,
    completed_at TIMESTAMP,
    winner_team_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_competitions_phase ON competitions(phase);

-- Teams
CREATE TABLE IF NOT EXISTS teams (
    id TEXT PRIMARY KEY,
    competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'eliminated')),
    votes INTEGER NOT NULL DEFAULT 0,
    eliminated_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_teams_competition_id ON teams(competition_id);

-- Votes (permanent ledger; never deleted by resets)
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
    team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    voter_session TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    origin_hash TEXT,
    UNIQUE (competition_id, voter_session)
);

CREATE INDEX IF NOT EXISTS idx_votes_competition_id ON votes(competition_id);
CREATE INDEX IF NOT EXISTS idx_votes_team_id ON votes(team_id);

-- Competition results (immutable history)
CREATE TABLE IF NOT EXISTS competition_results (
    id TEXT PRIMARY KEY,
    competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
    final_ranking TEXT NOT NULL,
    total_votes INTEGER NOT NULL,
    total_participants INTEGER NOT NULL,
    duration_minutes INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_competition_results_competition_id ON competition_results(competition_id);
`

const schemaPostgres = `
-- Competitions
CREATE TABLE IF NOT EXISTS competitions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phase TEXT NOT NULL DEFAULT 'setup' CHECK (phase IN ('setup', 'voting', 'completed')),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    started_at TIMESTAMP,
    completed_at TIMESTAMP,
    winner_team_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_competitions_phase ON competitions(phase);

-- Teams
CREATE TABLE IF NOT EXISTS teams (
    id TEXT PRIMARY KEY,
    competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'eliminated')),
    votes INTEGER NOT NULL DEFAULT 0,
    eliminated_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_teams_competition_id ON teams(competition_id);

-- Votes (permanent ledger; never deleted by resets)
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
    team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    voter_session TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL DEFAULT NOW(),
    origin_hash TEXT,
    UNIQUE (competition_id, voter_session)
);

CREATE INDEX IF NOT EXISTS idx_votes_competition_id ON votes(competition_id);
CREATE INDEX IF NOT EXISTS idx_votes_team_id ON votes(team_id);

-- Competition results (immutable history)
CREATE TABLE IF NOT EXISTS competition_results (
    id TEXT PRIMARY KEY,
    competition_id TEXT NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
    final_ranking JSONB NOT NULL,
    total_votes INTEGER NOT NULL,
    total_participants INTEGER NOT NULL,
    duration_minutes INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_competition_results_competition_id ON competition_results(competition_id);
`
