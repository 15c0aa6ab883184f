// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateVoterSession(t *testing.T) {
	// Test basic generation
	session, err := GenerateVoterSession()
	if err != nil {
		t.Fatalf("GenerateVoterSession() error = %v", err)
	}

	if session == "" {
		t.Error("GenerateVoterSession() returned empty string")
	}

	// Should be URL-safe (no padding)
	if strings.Contains(session, "=") {
		t.Error("GenerateVoterSession() contains padding characters")
	}

	// Should be reasonably long (24 bytes encoded)
	if len(session) < 30 {
		t.Errorf("GenerateVoterSession() too short: %d chars", len(session))
	}

	// Test randomness - should not produce duplicates
	sessions := make(map[string]bool)
	for i := 0; i < 100; i++ {
		session, err := GenerateVoterSession()
		if err != nil {
			t.Fatalf("GenerateVoterSession() error on iteration %d: %v", i, err)
		}
		if sessions[session] {
			t.Errorf("GenerateVoterSession() produced duplicate token: %s", session)
		}
		sessions[session] = true
	}
}

func TestHashOrigin(t *testing.T) {
	tests := []struct {
		name string
		addr string
		salt string
	}{
		{"IPv4", "192.168.1.1", "origin-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "origin-salt"},
		{"localhost", "127.0.0.1", "origin-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashOrigin(tt.addr, tt.salt)

			// Should not be empty
			if hash == "" {
				t.Error("HashOrigin() returned empty string")
			}

			// Should be 16 hex characters (8 bytes * 2)
			if len(hash) != 16 {
				t.Errorf("HashOrigin() length = %d, want 16", len(hash))
			}

			// Should be valid hex
			for _, c := range hash {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("HashOrigin() contains invalid hex char: %c", c)
				}
			}

			// Should be deterministic
			hash2 := HashOrigin(tt.addr, tt.salt)
			if hash != hash2 {
				t.Error("HashOrigin() is not deterministic")
			}
		})
	}

	// Different addresses should produce different hashes
	hash1 := HashOrigin("192.168.1.1", "salt")
	hash2 := HashOrigin("192.168.1.2", "salt")
	if hash1 == hash2 {
		t.Error("HashOrigin() produced same hash for different addresses")
	}

	// Different salts should produce different hashes
	hash3 := HashOrigin("192.168.1.1", "salt1")
	hash4 := HashOrigin("192.168.1.1", "salt2")
	if hash3 == hash4 {
		t.Error("HashOrigin() produced same hash for different salts")
	}
}

// Benchmark tests
func BenchmarkGenerateVoterSession(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateVoterSession()
	}
}

func BenchmarkHashOrigin(b *testing.B) {
	addr := "192.168.1.1"
	salt := "origin-salt"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		HashOrigin(addr, salt)
	}
}
