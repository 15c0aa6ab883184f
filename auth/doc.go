// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and origin hashing.

Voter sessions are opaque, self-reported tokens used only for vote
deduplication - they carry no verified identity. Clients normally generate
their own; GenerateVoterSession is the server-side equivalent used by tools
and tests:

	session, err := auth.GenerateVoterSession()

Vote origin addresses are stored hashed, never raw:

	origin := auth.HashOrigin(middleware.GetClientIP(r), cfg.IPHashSalt)
*/
package auth
