// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "modernc.org/sqlite"

	"knockout/cliparse"
	"knockout/db"
	"knockout/engine"
	"knockout/hub"
	"knockout/registry"
)

// SetupTestDB creates an in-memory sqlite database with the full schema.
// Closed automatically when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// An in-memory database exists per connection; a second connection
	// would see an empty schema.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DriverSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseType: "sqlite",
		DatabaseURL:  ":memory:",
		ClientURL:    "http://localhost:3000",
		IPHashSalt:   "test-ip-salt",
	}
}

// TestEnv bundles the collaborators most tests need.
type TestEnv struct {
	Store    *db.Store
	Registry *registry.Registry
	Hub      *hub.Hub
	Engine   *engine.Engine
	Clock    *FakeClock
}

// NewTestEngine wires an engine against a fresh in-memory database. The
// check delay is zero so elimination evaluation runs synchronously inside
// SubmitVote, and the reset delay is zero so round resets fire immediately
// when triggered.
func NewTestEngine(t *testing.T, cfg engine.Config) *TestEnv {
	t.Helper()

	conn := SetupTestDB(t)
	store := db.New(conn, db.DriverSQLite)
	reg := registry.New()
	h := hub.New()

	clock := NewFakeClock()
	if cfg.Clock == nil {
		cfg.Clock = clock
	}

	return &TestEnv{
		Store:    store,
		Registry: reg,
		Hub:      h,
		Engine:   engine.New(store, reg, h, cfg),
		Clock:    clock,
	}
}

// CreateTestCompetition creates a competition with the given team names and
// returns it with its teams in position order.
func (env *TestEnv) CreateTestCompetition(t *testing.T, name string, teamNames ...string) (string, []string) {
	t.Helper()

	comp, teams, err := env.Engine.CreateCompetition(context.Background(), name, teamNames)
	if err != nil {
		t.Fatalf("Failed to create test competition: %v", err)
	}

	teamIDs := make([]string, len(teams))
	for i, team := range teams {
		teamIDs[i] = team.ID
	}
	return comp.ID, teamIDs
}

// StartTestCompetition opens voting with the given participant estimate.
func (env *TestEnv) StartTestCompetition(t *testing.T, competitionID string, expectedParticipants int) {
	t.Helper()

	if _, err := env.Engine.StartCompetition(context.Background(), competitionID, expectedParticipants); err != nil {
		t.Fatalf("Failed to start test competition: %v", err)
	}
}

// CastTestVote submits one ballot from a fresh voter session.
func (env *TestEnv) CastTestVote(t *testing.T, competitionID, teamID string) {
	t.Helper()

	session := NewVoterSession(t)
	if _, err := env.Engine.SubmitVote(context.Background(), competitionID, teamID, session, "test-origin"); err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
