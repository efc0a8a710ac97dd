package game

import (
	"errors"
	"testing"
)

func newTestSession(t *testing.T, seed int64) *Session {
	t.Helper()
	s, err := NewSession(DefaultRules(), seed, testLogger())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestSessionJoinValidatesNames(t *testing.T) {
	s := newTestSession(t, 41)

	tests := []struct {
		name string
		ok   bool
	}{
		{"melis", true},
		{"player one", true},
		{"A_b_1", true},
		{"  padded  ", true}, // trimmed before validation
		{"x", false},
		{"", false},
		{"bad!name", false},
		{"this name is far too long to be allowed in", false},
	}
	for _, tc := range tests {
		_, err := s.Join(tc.name)
		if tc.ok && err != nil {
			t.Fatalf("Join(%q): unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidPlayerName) {
			t.Fatalf("Join(%q): err = %v, want ErrInvalidPlayerName", tc.name, err)
		}
	}
}

func TestSessionJoinIsIdempotent(t *testing.T) {
	s := newTestSession(t, 42)

	first, err := s.Join("melis")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, _, err := s.ResolveTurn("melis", Decisions{}, ""); err != nil {
		t.Fatalf("turn: %v", err)
	}
	again, err := s.Join("melis")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again.Month != first.Month+1 {
		t.Fatalf("rejoin returned month %d, want the live portfolio at month %d", again.Month, first.Month+1)
	}
}

func TestSessionUnknownPlayer(t *testing.T) {
	s := newTestSession(t, 43)

	if _, err := s.Portfolio("ghost"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("Portfolio: err = %v, want ErrUnknownPlayer", err)
	}
	if _, err := s.History("ghost"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("History: err = %v, want ErrUnknownPlayer", err)
	}
	if _, _, err := s.ResolveTurn("ghost", Decisions{}, ""); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("ResolveTurn: err = %v, want ErrUnknownPlayer", err)
	}
}

func TestSessionIdempotencyKeyReplay(t *testing.T) {
	s := newTestSession(t, 44)
	if _, err := s.Join("melis"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if _, _, err := s.ResolveTurn("melis", Decisions{}, "key-1"); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if _, _, err := s.ResolveTurn("melis", Decisions{}, "key-1"); !errors.Is(err, ErrDuplicateIdempotency) {
		t.Fatalf("replay: err = %v, want ErrDuplicateIdempotency", err)
	}
	// A fresh key resolves the next month normally.
	if _, p, err := s.ResolveTurn("melis", Decisions{}, "key-2"); err != nil || p.Month != 3 {
		t.Fatalf("second turn: month=%v err=%v", p, err)
	}
}

func TestSessionIdempotencyKeysScopedPerPlayer(t *testing.T) {
	s := newTestSession(t, 48)
	for _, name := range []string{"melis", "deniz"} {
		if _, err := s.Join(name); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}

	// Two players may send the same key; it only blocks replays by the same
	// player.
	if _, _, err := s.ResolveTurn("melis", Decisions{}, "key-1"); err != nil {
		t.Fatalf("melis turn: %v", err)
	}
	if _, _, err := s.ResolveTurn("deniz", Decisions{}, "key-1"); err != nil {
		t.Fatalf("deniz turn with melis's key: %v", err)
	}
	if _, _, err := s.ResolveTurn("melis", Decisions{}, "key-1"); !errors.Is(err, ErrDuplicateIdempotency) {
		t.Fatalf("melis replay: err = %v, want ErrDuplicateIdempotency", err)
	}
}

func TestSessionKeyNotBurnedOnRejectedTurn(t *testing.T) {
	s := newTestSession(t, 45)
	if _, err := s.Join("melis"); err != nil {
		t.Fatalf("join: %v", err)
	}

	bad := Decisions{DiscretionaryMicros: -1}
	if _, _, err := s.ResolveTurn("melis", bad, "key-1"); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("bad turn: err = %v, want ErrInvalidDecision", err)
	}
	// The key was never consumed, so the corrected retry goes through.
	if _, _, err := s.ResolveTurn("melis", Decisions{}, "key-1"); err != nil {
		t.Fatalf("retry with same key: %v", err)
	}
}

func TestSessionSnapshotsAreCopies(t *testing.T) {
	s := newTestSession(t, 46)
	if _, err := s.Join("melis"); err != nil {
		t.Fatalf("join: %v", err)
	}

	snap, err := s.Portfolio("melis")
	if err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	snap.CashMicros = -1

	fresh, err := s.Portfolio("melis")
	if err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	if fresh.CashMicros == -1 {
		t.Fatal("mutating a snapshot leaked into the session")
	}
}

func TestSessionLeaderboardCoversAllPlayers(t *testing.T) {
	s := newTestSession(t, 47)
	for _, name := range []string{"ada", "bora", "ceren"} {
		if _, err := s.Join(name); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}
	if _, _, err := s.ResolveTurn("bora", Decisions{}, ""); err != nil {
		t.Fatalf("turn: %v", err)
	}

	rows := s.Leaderboard()
	if len(rows) != 3 {
		t.Fatalf("leaderboard rows = %d, want 3", len(rows))
	}
	seen := map[string]bool{}
	for _, row := range rows {
		seen[row.Player] = true
	}
	for _, name := range []string{"ada", "bora", "ceren"} {
		if !seen[name] {
			t.Fatalf("leaderboard missing %s: %+v", name, rows)
		}
	}
}
