// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package hub implements per-competition broadcast fan-out.

Each competition has a room; subscribers join a room and receive every
event published to it:

	h := hub.New()
	h.Subscribe(competitionID, client)
	h.Publish(competitionID, hub.Event{Kind: hub.EventVoteUpdate, Data: payload})

# Delivery Semantics

Delivery is best-effort, at-most-once per subscriber per event. Deliver
implementations must not block; a transport that falls behind drops events
and reconverges from the currentState snapshot on its next join. There is
no replay log.

Events for one competition reach a given subscriber in publish order; no
ordering exists across competitions.

# Event Kinds

	voteUpdate          - refreshed tally after an accepted ballot
	teamEliminated      - a team left the round (with remaining active set)
	roundReset          - counters zeroed for the next round
	competitionStarted  - voting opened
	competitionComplete - winner and final ranking
	competitionReset    - competition forced back to setup
	currentState        - snapshot, sent only to a newly joined subscriber
*/
package hub
