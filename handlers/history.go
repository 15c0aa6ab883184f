// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"knockout/cliparse"
	"knockout/db"
	"knockout/middleware"
)

type HistoryHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewHistoryHandler(store *db.Store, cfg cliparse.Config) *HistoryHandler {
	return &HistoryHandler{store: store, cfg: cfg}
}

// List handles GET /api/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListHistory(r.Context())
	if err != nil {
		slog.Error("failed to list history", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	for i := range entries {
		if entries[i].CompletedAt != nil {
			entries[i].CompletedAgo = humanize.Time(*entries[i].CompletedAt)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}
