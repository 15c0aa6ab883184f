// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"sync"
	"testing"
	"time"

	"knockout/auth"
)

// FakeClock is a manually advanced clock so tests get deterministic
// timestamps for elimination order and duration calculations.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewVoterSession generates a fresh voter session token.
func NewVoterSession(t *testing.T) string {
	t.Helper()
	session, err := auth.GenerateVoterSession()
	if err != nil {
		t.Fatalf("Failed to generate voter session: %v", err)
	}
	return session
}
