package bot

import (
	"testing"
	"time"
)

func TestSessionPutGet(t *testing.T) {
	s := newSessionStore()

	if _, ok := s.Get(1); ok {
		t.Fatal("Get on empty store returned a session")
	}

	s.Put(1, "tt001")
	titleID, ok := s.Get(1)
	if !ok || titleID != "tt001" {
		t.Fatalf("Get = %q, %v", titleID, ok)
	}

	// Picks are per user.
	if _, ok := s.Get(2); ok {
		t.Error("session leaked across users")
	}

	// A new pick replaces the old one.
	s.Put(1, "tt002")
	if titleID, _ := s.Get(1); titleID != "tt002" {
		t.Errorf("Get after replace = %q, want tt002", titleID)
	}
}

func TestSessionExpiry(t *testing.T) {
	s := newSessionStore()
	current := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.Put(1, "tt001")
	current = current.Add(sessionTTL - time.Second)
	if _, ok := s.Get(1); !ok {
		t.Fatal("session expired early")
	}

	current = current.Add(2 * time.Second)
	if _, ok := s.Get(1); ok {
		t.Fatal("session survived past its TTL")
	}
	// Expired entry was dropped, not just hidden.
	s.mu.Lock()
	_, present := s.sessions[1]
	s.mu.Unlock()
	if present {
		t.Error("expired session still stored")
	}
}

func TestSessionClear(t *testing.T) {
	s := newSessionStore()
	s.Put(1, "tt001")
	s.Clear(1)
	if _, ok := s.Get(1); ok {
		t.Fatal("session survived Clear")
	}
	s.Clear(1) // clearing an absent session is fine
}
