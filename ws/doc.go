// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ws bridges websocket connections onto the broadcast hub.

Clients connect to GET /ws and join a competition's room either with the
?competition= query parameter or by sending:

	{"type": "joinCompetition", "competition_id": "<id>"}

On join the client receives a currentState snapshot, then every event
published to that room. Delivery is best-effort: a client whose send
buffer fills up loses events and reconverges from the snapshot on its
next join. One connection may join any number of competitions.
*/
package ws
