// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"knockout/engine"
	"knockout/hub"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512

	// sendBufferSize bounds the per-client backlog. A client that cannot
	// drain this many events is dropped-from rather than blocked-on.
	sendBufferSize = 32
)

// clientMessage is the only inbound frame voters send: joining a
// competition's room.
type clientMessage struct {
	Type          string `json:"type"`
	CompetitionID string `json:"competition_id"`
}

// Client is one websocket connection. It implements hub.Subscriber with a
// buffered, non-blocking Deliver so a slow connection never stalls the
// publisher; overflow events are dropped and the client reconverges from
// the snapshot on its next join.
type Client struct {
	engine *engine.Engine
	conn   *websocket.Conn
	send   chan hub.Event

	mu     sync.Mutex
	joined map[string]struct{}
	closed bool
}

func newClient(eng *engine.Engine, conn *websocket.Conn) *Client {
	return &Client{
		engine: eng,
		conn:   conn,
		send:   make(chan hub.Event, sendBufferSize),
		joined: make(map[string]struct{}),
	}
}

// Deliver queues an event for the write pump. Never blocks. The mutex is
// held across the send so teardown cannot close the channel mid-delivery.
func (c *Client) Deliver(event hub.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- event:
	default:
		slog.Warn("dropping event for slow websocket client", "event", event.Kind)
	}
}

// readPump consumes inbound frames until the connection dies. The only
// recognized message is joinCompetition; everything else is ignored.
func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("ignoring malformed websocket message", "error", err)
			continue
		}

		if msg.Type == "joinCompetition" && msg.CompetitionID != "" {
			c.join(msg.CompetitionID)
		}
	}
}

// join subscribes this client to a competition's room. Subscribing
// delivers the currentState snapshot so late joiners converge immediately.
func (c *Client) join(competitionID string) {
	c.mu.Lock()
	if _, ok := c.joined[competitionID]; ok {
		c.mu.Unlock()
		return
	}
	c.joined[competitionID] = struct{}{}
	c.mu.Unlock()

	if err := c.engine.Subscribe(context.Background(), competitionID, c); err != nil {
		slog.Warn("websocket join failed", "error", err, "competition_id", competitionID)
		c.mu.Lock()
		delete(c.joined, competitionID)
		c.mu.Unlock()
		c.engine.Unsubscribe(competitionID, c)
	}
}

// writePump serializes queued events onto the wire and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// teardown leaves every joined room and closes the send channel exactly once.
func (c *Client) teardown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	rooms := make([]string, 0, len(c.joined))
	for competitionID := range c.joined {
		rooms = append(rooms, competitionID)
	}
	c.mu.Unlock()

	for _, competitionID := range rooms {
		c.engine.Unsubscribe(competitionID, c)
	}
	c.conn.Close()
}
