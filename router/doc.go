// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the knockout API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(eng, store, cfg)

# Endpoints

Health:

	GET /health

Competition management (organizer):

	POST /api/competition            - Create competition with teams
	GET  /api/competition/{id}       - Phase, teams and winner
	POST /api/competition/{id}/start - Open voting
	POST /api/competition/{id}/reset - Force back to setup

Voting (public):

	POST /api/vote - Submit one ballot per voter session

History (public):

	GET /api/history - Past competitions with final rankings

Live events:

	GET /ws - Websocket event stream (see package ws)

# Handler Initialization

The router creates handler instances with dependency injection:

	competitionHandler := handlers.NewCompetitionHandler(eng, cfg)
	voteHandler := handlers.NewVoteHandler(eng, cfg)
	historyHandler := handlers.NewHistoryHandler(store, cfg)
	wsHandler := ws.NewHandler(eng)
*/
package router
