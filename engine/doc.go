// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the competition lifecycle and the elimination
state machine.

# Lifecycle

Competitions move through three phases:

	setup → voting → completed

StartCompetition opens voting and registers an in-memory session with the
organizer's participant estimate. SubmitVote records ballots, one per
voter session per competition, enforced by a database uniqueness
constraint so concurrent duplicates lose the race cleanly.
ResetCompetition forces any phase back to setup.

# Elimination

Every accepted ballot schedules an evaluation cycle. A cycle fires an
elimination when all of these hold:

  - the competition is in the voting phase with a live session
  - current-round votes reach the threshold, the larger of 10 and
    10% of expected participants
  - the lowest-voted active team is strictly below the second lowest

A tie for last place defers to the next cycle. With more than two active
teams the loser is eliminated and a delayed round reset zeroes the
survivors' counters. With exactly two, the trailing team is recorded as
eliminated and the competition completes; when one active team remains
the competition completes unconditionally.

At most one cycle runs per competition at a time. A trigger arriving
mid-cycle leaves a deferred mark that the running cycle drains before
releasing the lock, so no trigger is ever lost.

# Errors

Callers branch on the sentinel errors with errors.Is: ErrValidation,
ErrNotFound, ErrNotVoting, ErrAlreadyVoted and ErrInvalidState. Anything
else is a persistence failure.
*/
package engine
