// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the knockout API server.

Knockout runs live single-elimination audience voting: an organizer
registers teams, the audience votes anonymously from their phones, and
the lowest-voted team is periodically eliminated until one winner
remains. Spectators follow every tally change over a websocket stream.

# Starting the Server

The server runs on sqlite out of the box:

	IP_HASH_SALT=secret go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -ip-salt secret

# Configuration

Required settings:

  - IP_HASH_SALT (-ip-salt): Secret for vote origin hashing

Optional settings:

  - PORT (-p): Server port (default: 3001)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string or sqlite file (default: voting.db)
  - CLIENT_URL (-client-url): Base URL of the voting frontend
  - RESET_DELAY (-reset-delay): Pause between elimination and the next round
  - CHECK_DELAY (-check-delay): Debounce between a vote and evaluation

# Architecture

The server uses a handler-based architecture with dependency injection:

  - engine: Competition lifecycle and the elimination state machine
  - hub: Per-competition broadcast fan-out
  - ws: Websocket transport onto the hub
  - registry: In-memory sessions for competitions accepting votes
  - handlers: HTTP request handlers (competitions, votes, history)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - auth: Session tokens and origin hashing
  - db: Persistence and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
