// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"knockout/auth"
	"knockout/cliparse"
	"knockout/engine"
	"knockout/middleware"
	"knockout/models"
)

type VoteHandler struct {
	engine *engine.Engine
	cfg    cliparse.Config
}

func NewVoteHandler(eng *engine.Engine, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{engine: eng, cfg: cfg}
}

// Submit handles POST /api/vote
func (h *VoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// The origin address never touches storage in the clear.
	clientIP := middleware.GetClientIP(r)
	originHash := auth.HashOrigin(clientIP, h.cfg.IPHashSalt)

	vote, err := h.engine.SubmitVote(r.Context(), req.CompetitionID, req.TeamID, req.VoterSession, originHash)
	if err != nil {
		writeEngineError(w, err, "Failed to submit vote")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		VoteID:  vote.ID,
		Message: "Vote recorded",
	})
}
