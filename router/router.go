// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"knockout/cliparse"
	"knockout/db"
	"knockout/engine"
	"knockout/handlers"
	"knockout/middleware"
	"knockout/ws"
)

func NewRouter(eng *engine.Engine, store *db.Store, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	competitionHandler := handlers.NewCompetitionHandler(eng, cfg)
	voteHandler := handlers.NewVoteHandler(eng, cfg)
	historyHandler := handlers.NewHistoryHandler(store, cfg)
	wsHandler := ws.NewHandler(eng)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Competition management (organizer operations)
	mux.HandleFunc("POST /api/competition", middleware.WithLogging(competitionHandler.Create))
	mux.HandleFunc("GET /api/competition/{id}", middleware.WithLogging(competitionHandler.Get))
	mux.HandleFunc("POST /api/competition/{id}/start", middleware.WithLogging(competitionHandler.Start))
	mux.HandleFunc("POST /api/competition/{id}/reset", middleware.WithLogging(competitionHandler.Reset))

	// Voting (public)
	mux.HandleFunc("POST /api/vote", middleware.WithLogging(voteHandler.Submit))

	// History (public)
	mux.HandleFunc("GET /api/history", middleware.WithLogging(historyHandler.List))

	// Live event stream
	mux.Handle("GET /ws", wsHandler)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("knockout API v1"))
	})

	return mux
}
