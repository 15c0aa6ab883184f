// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

// Caller-visible error taxonomy. Handlers map these to HTTP status codes
// with errors.Is; everything else is a persistence failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrNotVoting    = errors.New("competition is not accepting votes")
	ErrInvalidState = errors.New("action not allowed in current phase")
	ErrAlreadyVoted = errors.New("voter session has already voted")
	ErrValidation   = errors.New("invalid input")
)
