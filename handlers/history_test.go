// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"knockout/engine"
	"knockout/models"
	"knockout/testutil"
)

func TestHistoryEmpty(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	handler := NewHistoryHandler(env.Store, testutil.GetTestConfig())

	req := testutil.MakeRequest("GET", "/api/history", nil, nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var entries []models.HistoryEntry
	testutil.AssertJSON(t, w, &entries)
	if len(entries) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(entries))
	}
}

func TestHistoryListsCompetitions(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	handler := NewHistoryHandler(env.Store, testutil.GetTestConfig())

	// One competition still in setup, one completed by a full final round
	env.CreateTestCompetition(t, "Still Brewing", "Alpha", "Beta")

	competitionID, teamIDs := env.CreateTestCompetition(t, "Finished", "Gamma", "Delta")
	env.StartTestCompetition(t, competitionID, 50)
	for i := 0; i < 6; i++ {
		env.CastTestVote(t, competitionID, teamIDs[0])
	}
	for i := 0; i < 4; i++ {
		env.CastTestVote(t, competitionID, teamIDs[1])
	}

	req := testutil.MakeRequest("GET", "/api/history", nil, nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var entries []models.HistoryEntry
	testutil.AssertJSON(t, w, &entries)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(entries))
	}

	var finished *models.HistoryEntry
	for i := range entries {
		if entries[i].Name == "Finished" {
			finished = &entries[i]
		}
	}
	if finished == nil {
		t.Fatal("Expected the completed competition in history")
	}
	if finished.Phase != models.PhaseCompleted {
		t.Errorf("Expected phase completed, got %s", finished.Phase)
	}
	if finished.CompletedAgo == "" {
		t.Error("Expected a humanized completion time")
	}
	if len(finished.FinalRanking) != 2 {
		t.Errorf("Expected a 2-team final ranking, got %d", len(finished.FinalRanking))
	}
	if finished.FinalRanking[0].TeamName != "Gamma" {
		t.Errorf("Expected Gamma ranked first, got %s", finished.FinalRanking[0].TeamName)
	}
	if finished.TotalVotes != 10 {
		t.Errorf("Expected 10 total votes, got %d", finished.TotalVotes)
	}
}
