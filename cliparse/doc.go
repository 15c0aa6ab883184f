// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags, environment
variables, and an optional .env file (loaded via godotenv).

# Precedence

CLI flags override environment variables, which override defaults:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Settings

  - PORT (-p): server port (default 3001)
  - DATABASE_TYPE (-t): sqlite or postgres (default sqlite)
  - DATABASE_URL (-d): connection string, or file path for sqlite
    (default voting.db)
  - CLIENT_URL (-client-url): base URL voters open (default
    http://localhost:3000); used to build per-competition voting URLs
  - IP_HASH_SALT (-ip-salt): required secret for vote origin hashing
  - RESET_DELAY (-reset-delay): elimination → round reset delay (default 3s)
  - CHECK_DELAY (-check-delay): vote → elimination check delay (default 1s)

The two delay knobs exist so tests can shrink the engine's timers.
*/
package cliparse
