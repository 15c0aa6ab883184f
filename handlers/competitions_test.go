// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"knockout/engine"
	"knockout/models"
	"knockout/testutil"
)

func TestCreateCompetition(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	cfg := testutil.GetTestConfig()
	handler := NewCompetitionHandler(env.Engine, cfg)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CreateCompetitionResponse)
	}{
		{
			name: "valid competition",
			requestBody: models.CreateCompetitionRequest{
				Name:      "Demo Night",
				TeamNames: []string{"Alpha", "Beta", "Gamma"},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreateCompetitionResponse) {
				if resp.CompetitionID == "" {
					t.Error("Expected non-empty competition_id")
				}
				if resp.Name != "Demo Night" {
					t.Errorf("Expected name 'Demo Night', got '%s'", resp.Name)
				}
				if !strings.HasPrefix(resp.VotingURL, cfg.ClientURL+"/vote?competition=") {
					t.Errorf("Unexpected voting_url: %s", resp.VotingURL)
				}
				if !strings.Contains(resp.VotingURL, resp.CompetitionID) {
					t.Error("Expected voting_url to carry the competition id")
				}
			},
		},
		{
			name: "missing name",
			requestBody: models.CreateCompetitionRequest{
				TeamNames: []string{"Alpha", "Beta"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "too few teams",
			requestBody: models.CreateCompetitionRequest{
				Name:      "Demo",
				TeamNames: []string{"Alpha"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "blank team name",
			requestBody: models.CreateCompetitionRequest{
				Name:      "Demo",
				TeamNames: []string{"Alpha", "  "},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/competition", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.Create(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.checkResponse != nil {
				var resp models.CreateCompetitionResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestCreateCompetitionInvalidJSON(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	handler := NewCompetitionHandler(env.Engine, testutil.GetTestConfig())

	req := httptest.NewRequest("POST", "/api/competition", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestGetCompetition(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	handler := NewCompetitionHandler(env.Engine, testutil.GetTestConfig())

	competitionID, _ := env.CreateTestCompetition(t, "Demo Night", "Alpha", "Beta")

	t.Run("existing competition", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/competition/"+competitionID, nil, nil)
		req.SetPathValue("id", competitionID)
		w := httptest.NewRecorder()

		handler.Get(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CompetitionResponse
		testutil.AssertJSON(t, w, &resp)

		if resp.Competition.ID != competitionID {
			t.Errorf("Expected competition %s, got %s", competitionID, resp.Competition.ID)
		}
		if resp.Competition.Phase != models.PhaseSetup {
			t.Errorf("Expected phase setup, got %s", resp.Competition.Phase)
		}
		if len(resp.Teams) != 2 {
			t.Errorf("Expected 2 teams, got %d", len(resp.Teams))
		}
		if resp.Winner != nil {
			t.Error("Expected no winner in setup")
		}
	})

	t.Run("unknown competition", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/competition/nope", nil, nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()

		handler.Get(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestStartCompetitionHandler(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	handler := NewCompetitionHandler(env.Engine, testutil.GetTestConfig())

	competitionID, _ := env.CreateTestCompetition(t, "Demo Night", "Alpha", "Beta")

	t.Run("start with estimate", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/competition/"+competitionID+"/start",
			models.StartCompetitionRequest{ExpectedParticipants: 120}, nil)
		req.SetPathValue("id", competitionID)
		w := httptest.NewRecorder()

		handler.Start(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CompetitionStartedPayload
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Teams) != 2 {
			t.Errorf("Expected 2 teams, got %d", len(resp.Teams))
		}

		session, ok := env.Registry.Get(competitionID)
		if !ok {
			t.Fatal("Expected a registry session")
		}
		if session.ExpectedParticipants != 120 {
			t.Errorf("Expected estimate 120, got %d", session.ExpectedParticipants)
		}
	})

	t.Run("double start conflicts", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/competition/"+competitionID+"/start", nil, nil)
		req.SetPathValue("id", competitionID)
		w := httptest.NewRecorder()

		handler.Start(w, req)

		testutil.AssertStatus(t, w, http.StatusConflict)
	})

	t.Run("unknown competition", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/competition/nope/start", nil, nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()

		handler.Start(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestResetCompetitionHandler(t *testing.T) {
	env := testutil.NewTestEngine(t, engine.Config{})
	handler := NewCompetitionHandler(env.Engine, testutil.GetTestConfig())

	competitionID, _ := env.CreateTestCompetition(t, "Demo Night", "Alpha", "Beta")
	env.StartTestCompetition(t, competitionID, 50)

	req := testutil.MakeRequest("POST", "/api/competition/"+competitionID+"/reset", nil, nil)
	req.SetPathValue("id", competitionID)
	w := httptest.NewRecorder()

	handler.Reset(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	comp, err := env.Engine.Competition(req.Context(), competitionID)
	if err != nil {
		t.Fatalf("Failed to reload competition: %v", err)
	}
	if comp.Phase != models.PhaseSetup {
		t.Errorf("Expected phase setup after reset, got %s", comp.Phase)
	}
}
