// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"knockout/models"
)

// Driver names accepted by Open and CreateSchema.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is the durable persistence collaborator. All engine state that must
// survive a restart goes through here; in-memory session state does not.
type Store struct {
	db     *sql.DB
	driver string
}

func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// rebind rewrites ? placeholders to $N for postgres. Queries in this file
// are written in ? style so the same text works against sqlite.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint,
// covering both drivers. The constraint is the atomicity guarantee for
// one-vote-per-session: concurrent inserts race at the database, and the
// loser surfaces here.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Competition methods

// CreateCompetition inserts a competition and its teams in one transaction.
func (s *Store) CreateCompetition(ctx context.Context, comp models.Competition, teams []models.Team) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO competitions (id, name, phase, created_at)
		VALUES (?, ?, ?, ?)
	`), comp.ID, comp.Name, comp.Phase, comp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert competition: %w", err)
	}

	for _, team := range teams {
		_, err = tx.ExecContext(ctx, s.rebind(`
			INSERT INTO teams (id, competition_id, name, position, status, votes)
			VALUES (?, ?, ?, ?, ?, 0)
		`), team.ID, team.CompetitionID, team.Name, team.Position, models.TeamActive)
		if err != nil {
			return fmt.Errorf("failed to insert team: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCompetition returns sql.ErrNoRows for unknown ids.
func (s *Store) GetCompetition(ctx context.Context, id string) (models.Competition, error) {
	var comp models.Competition
	var started, completed sql.NullTime
	var winner sql.NullString

	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, name, phase, created_at, started_at, completed_at, winner_team_id
		FROM competitions
		WHERE id = ?
	`), id).Scan(&comp.ID, &comp.Name, &comp.Phase, &comp.CreatedAt, &started, &completed, &winner)
	if err != nil {
		return models.Competition{}, err
	}

	if started.Valid {
		comp.StartedAt = &started.Time
	}
	if completed.Valid {
		comp.CompletedAt = &completed.Time
	}
	if winner.Valid {
		comp.WinnerTeamID = &winner.String
	}
	return comp, nil
}

// MarkStarted moves a competition into the voting phase.
func (s *Store) MarkStarted(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE competitions
		SET phase = ?, started_at = ?, completed_at = NULL, winner_team_id = NULL
		WHERE id = ?
	`), models.PhaseVoting, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark competition started: %w", err)
	}
	return nil
}

// MarkCompleted records the winner and completion time.
func (s *Store) MarkCompleted(ctx context.Context, id, winnerTeamID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE competitions
		SET phase = ?, completed_at = ?, winner_team_id = ?
		WHERE id = ?
	`), models.PhaseCompleted, at, winnerTeamID, id)
	if err != nil {
		return fmt.Errorf("failed to mark competition completed: %w", err)
	}
	return nil
}

// MarkSetup forces a competition back to setup and clears completion metadata.
func (s *Store) MarkSetup(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE competitions
		SET phase = ?, started_at = NULL, completed_at = NULL, winner_team_id = NULL
		WHERE id = ?
	`), models.PhaseSetup, id)
	if err != nil {
		return fmt.Errorf("failed to mark competition setup: %w", err)
	}
	return nil
}

// Team methods

// GetTeams returns all teams for a competition in display order. The votes
// column is the live current-round counter, so this doubles as the tally.
func (s *Store) GetTeams(ctx context.Context, competitionID string) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, competition_id, name, position, status, votes, eliminated_at
		FROM teams
		WHERE competition_id = ?
		ORDER BY position
	`), competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		var team models.Team
		var eliminated sql.NullTime
		if err := rows.Scan(&team.ID, &team.CompetitionID, &team.Name, &team.Position,
			&team.Status, &team.Votes, &eliminated); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		if eliminated.Valid {
			team.EliminatedAt = &eliminated.Time
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// GetTeam returns sql.ErrNoRows for unknown ids.
func (s *Store) GetTeam(ctx context.Context, id string) (models.Team, error) {
	var team models.Team
	var eliminated sql.NullTime

	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, competition_id, name, position, status, votes, eliminated_at
		FROM teams
		WHERE id = ?
	`), id).Scan(&team.ID, &team.CompetitionID, &team.Name, &team.Position,
		&team.Status, &team.Votes, &eliminated)
	if err != nil {
		return models.Team{}, err
	}

	if eliminated.Valid {
		team.EliminatedAt = &eliminated.Time
	}
	return team, nil
}

// EliminateTeam marks a team eliminated. Status is monotonic within a round;
// only ReinstateTeams undoes it.
func (s *Store) EliminateTeam(ctx context.Context, teamID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE teams SET status = ?, eliminated_at = ? WHERE id = ?
	`), models.TeamEliminated, at, teamID)
	if err != nil {
		return fmt.Errorf("failed to eliminate team: %w", err)
	}
	return nil
}

// ZeroActiveTeamVotes starts a new round: surviving teams' counters drop to
// zero, eliminated teams keep their state, the vote ledger is untouched.
func (s *Store) ZeroActiveTeamVotes(ctx context.Context, competitionID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE teams SET votes = 0 WHERE competition_id = ? AND status = ?
	`), competitionID, models.TeamActive)
	if err != nil {
		return fmt.Errorf("failed to zero team votes: %w", err)
	}
	return nil
}

// ReinstateTeams returns every team to active with zero votes. Used on
// competition start and on an explicit admin reset, never between rounds.
func (s *Store) ReinstateTeams(ctx context.Context, competitionID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE teams SET votes = 0, status = ?, eliminated_at = NULL WHERE competition_id = ?
	`), models.TeamActive, competitionID)
	if err != nil {
		return fmt.Errorf("failed to reinstate teams: %w", err)
	}
	return nil
}

// Vote methods

// RecordVote appends to the ledger and bumps the team's current-round
// counter in one transaction: a ballot can never spend the session without
// being counted. The UNIQUE (competition_id, voter_session) constraint
// makes the duplicate check and the insert one atomic operation; callers
// detect the loser of a race with IsUniqueViolation.
func (s *Store) RecordVote(ctx context.Context, vote models.Vote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO votes (id, competition_id, team_id, voter_session, voted_at, origin_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`), vote.ID, vote.CompetitionID, vote.TeamID, vote.VoterSession, vote.VotedAt, vote.OriginHash)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		UPDATE teams SET votes = votes + 1 WHERE id = ?
	`), vote.TeamID)
	if err != nil {
		return fmt.Errorf("failed to increment team votes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HasVoted checks for a prior ballot from this session.
func (s *Store) HasVoted(ctx context.Context, competitionID, voterSession string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT EXISTS(
			SELECT 1 FROM votes WHERE competition_id = ? AND voter_session = ?
		)
	`), competitionID, voterSession).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote existence: %w", err)
	}
	return exists, nil
}

// CountVotes returns the all-time ledger size for a competition.
func (s *Store) CountVotes(ctx context.Context, competitionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(*) FROM votes WHERE competition_id = ?
	`), competitionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

// VoteCountsByTeam recomputes all-time per-team counts from the ledger.
// The live tally uses the teams.votes counter instead; this aggregate exists
// for diagnostics and invariant checks (ledger counts only ever grow).
func (s *Store) VoteCountsByTeam(ctx context.Context, competitionID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT team_id, COUNT(*) FROM votes WHERE competition_id = ? GROUP BY team_id
	`), competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var teamID string
		var count int
		if err := rows.Scan(&teamID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[teamID] = count
	}
	return counts, rows.Err()
}

// Result methods

// SaveResult persists the immutable completion record.
func (s *Store) SaveResult(ctx context.Context, result models.CompetitionResult) error {
	ranking, err := json.Marshal(result.FinalRanking)
	if err != nil {
		return fmt.Errorf("failed to encode final ranking: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO competition_results (id, competition_id, final_ranking, total_votes, total_participants, duration_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), result.ID, result.CompetitionID, string(ranking), result.TotalVotes,
		result.TotalParticipants, result.DurationMinutes, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// ListHistory returns all competitions newest-first, joined with their final
// results where completed.
func (s *Store) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.phase, c.created_at, c.completed_at,
		       r.final_ranking, r.total_votes, r.total_participants, r.duration_minutes
		FROM competitions c
		LEFT JOIN competition_results r ON c.id = r.competition_id
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var entry models.HistoryEntry
		var completed sql.NullTime
		var ranking sql.NullString
		var totalVotes, totalParticipants, durationMinutes sql.NullInt64

		if err := rows.Scan(&entry.CompetitionID, &entry.Name, &entry.Phase, &entry.CreatedAt,
			&completed, &ranking, &totalVotes, &totalParticipants, &durationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		if completed.Valid {
			entry.CompletedAt = &completed.Time
		}
		if ranking.Valid && ranking.String != "" {
			if err := json.Unmarshal([]byte(ranking.String), &entry.FinalRanking); err != nil {
				return nil, fmt.Errorf("failed to decode final ranking: %w", err)
			}
		}
		entry.TotalVotes = int(totalVotes.Int64)
		entry.TotalParticipants = int(totalParticipants.Int64)
		entry.DurationMinutes = int(durationMinutes.Int64)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
