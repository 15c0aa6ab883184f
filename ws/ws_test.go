// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"knockout/engine"
	"knockout/hub"
	"knockout/models"
	"knockout/testutil"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	return f
}

func TestJoinViaQueryParam(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	competitionID, _ := env.CreateTestCompetition(t, "Demo Night", "Alpha", "Beta")
	env.StartTestCompetition(t, competitionID, 50)

	srv := httptest.NewServer(NewHandler(env.Engine))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?competition=" + competitionID
	conn := dial(t, url)

	// Joining delivers the snapshot first
	f := readFrame(t, conn)
	if f.Event != string(hub.EventCurrentState) {
		t.Fatalf("Expected currentState, got %s", f.Event)
	}

	var snapshot models.CurrentStatePayload
	if err := json.Unmarshal(f.Data, &snapshot); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}
	if snapshot.CompetitionID != competitionID {
		t.Errorf("Expected snapshot for %s, got %s", competitionID, snapshot.CompetitionID)
	}
	if len(snapshot.Teams) != 2 {
		t.Errorf("Expected 2 teams in snapshot, got %d", len(snapshot.Teams))
	}
}

func TestJoinViaMessage(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	competitionID, _ := env.CreateTestCompetition(t, "Demo Night", "Alpha", "Beta")

	srv := httptest.NewServer(NewHandler(env.Engine))
	defer srv.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))

	join := map[string]string{"type": "joinCompetition", "competition_id": competitionID}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("Failed to send join: %v", err)
	}

	f := readFrame(t, conn)
	if f.Event != string(hub.EventCurrentState) {
		t.Fatalf("Expected currentState, got %s", f.Event)
	}
}

func TestReceivesRoomEvents(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	competitionID, teamIDs := env.CreateTestCompetition(t, "Demo Night", "Alpha", "Beta", "Gamma")
	env.StartTestCompetition(t, competitionID, 50)

	srv := httptest.NewServer(NewHandler(env.Engine))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?competition=" + competitionID
	conn := dial(t, url)

	// Consume the snapshot; reading it guarantees the subscription is live
	readFrame(t, conn)

	env.CastTestVote(t, competitionID, teamIDs[0])

	f := readFrame(t, conn)
	if f.Event != string(hub.EventVoteUpdate) {
		t.Fatalf("Expected voteUpdate, got %s", f.Event)
	}

	var update models.VoteUpdatePayload
	if err := json.Unmarshal(f.Data, &update); err != nil {
		t.Fatalf("Failed to decode vote update: %v", err)
	}
	found := false
	for _, team := range update.Teams {
		if team.ID == teamIDs[0] && team.Votes == 1 {
			found = true
		}
	}
	if !found {
		t.Error("Expected the voted team at 1 vote in the update")
	}
}

func TestUnknownCompetitionJoinIsIgnored(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})

	srv := httptest.NewServer(NewHandler(env.Engine))
	defer srv.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http")+"/?competition=nope")

	// No snapshot arrives; the connection stays open and a later valid join
	// still works
	competitionID, _ := env.CreateTestCompetition(t, "Late", "Alpha", "Beta")
	join := map[string]string{"type": "joinCompetition", "competition_id": competitionID}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("Failed to send join: %v", err)
	}

	f := readFrame(t, conn)
	if f.Event != string(hub.EventCurrentState) {
		t.Fatalf("Expected currentState for the valid join, got %s", f.Event)
	}
}
