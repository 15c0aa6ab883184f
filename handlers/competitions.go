// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"knockout/cliparse"
	"knockout/engine"
	"knockout/middleware"
	"knockout/models"
)

type CompetitionHandler struct {
	engine *engine.Engine
	cfg    cliparse.Config
}

func NewCompetitionHandler(eng *engine.Engine, cfg cliparse.Config) *CompetitionHandler {
	return &CompetitionHandler{engine: eng, cfg: cfg}
}

// votingURL is the link organizers share with the audience.
func (h *CompetitionHandler) votingURL(competitionID string) string {
	return h.cfg.ClientURL + "/vote?competition=" + url.QueryEscape(competitionID)
}

// Create handles POST /api/competition
func (h *CompetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCompetitionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	comp, _, err := h.engine.CreateCompetition(r.Context(), req.Name, req.TeamNames)
	if err != nil {
		writeEngineError(w, err, "Failed to create competition")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateCompetitionResponse{
		CompetitionID: comp.ID,
		Name:          comp.Name,
		VotingURL:     h.votingURL(comp.ID),
	})
}

// Get handles GET /api/competition/{id}
func (h *CompetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	competitionID := r.PathValue("id")
	if competitionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "competition id is required")
		return
	}

	snapshot, err := h.engine.Snapshot(r.Context(), competitionID)
	if err != nil {
		writeEngineError(w, err, "Failed to load competition")
		return
	}

	comp, err := h.engine.Competition(r.Context(), competitionID)
	if err != nil {
		writeEngineError(w, err, "Failed to load competition")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CompetitionResponse{
		Competition: comp,
		Teams:       snapshot.Teams,
		Winner:      snapshot.Winner,
		VotingURL:   h.votingURL(competitionID),
	})
}

// Start handles POST /api/competition/{id}/start
func (h *CompetitionHandler) Start(w http.ResponseWriter, r *http.Request) {
	competitionID := r.PathValue("id")
	if competitionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "competition id is required")
		return
	}

	// Body is optional; an empty body means the default estimate.
	var req models.StartCompetitionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	teams, err := h.engine.StartCompetition(r.Context(), competitionID, req.ExpectedParticipants)
	if err != nil {
		writeEngineError(w, err, "Failed to start competition")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CompetitionStartedPayload{
		CompetitionID: competitionID,
		Teams:         teams,
	})
}

// Reset handles POST /api/competition/{id}/reset
func (h *CompetitionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	competitionID := r.PathValue("id")
	if competitionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "competition id is required")
		return
	}

	if err := h.engine.ResetCompetition(r.Context(), competitionID); err != nil {
		writeEngineError(w, err, "Failed to reset competition")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CompetitionResetPayload{
		CompetitionID: competitionID,
	})
}

// writeEngineError maps the engine's error taxonomy onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrNotVoting),
		errors.Is(err, engine.ErrAlreadyVoted),
		errors.Is(err, engine.ErrInvalidState):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("handler error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, fallback)
	}
}
