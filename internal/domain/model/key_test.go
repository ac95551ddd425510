package model

import (
	"errors"
	"testing"
	"time"
)

func TestCurrentWeek(t *testing.T) {
	// 2026-01-01 falls in ISO week 1 of 2026.
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if got := CurrentWeek(now); got != "2026-W01" {
		t.Errorf("expected 2026-W01, got %s", got)
	}

	// 2023-01-01 is a Sunday and belongs to ISO week 52 of 2022.
	now = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := CurrentWeek(now); got != "2022-W52" {
		t.Errorf("expected 2022-W52, got %s", got)
	}
}

func TestNewLeaderboardKey_Defaults(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	key, err := NewLeaderboardKey("chess", "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.GameID != "chess" {
		t.Errorf("expected gameID chess, got %s", key.GameID)
	}
	if key.TimeFrame != CurrentWeek(now) {
		t.Errorf("expected current week %s, got %s", CurrentWeek(now), key.TimeFrame)
	}
}

func TestNewLeaderboardKey_Forms(t *testing.T) {
	now := time.Now()
	cases := []struct {
		in   string
		want string
	}{
		{"alltime", "alltime"},
		{"2026-08-30", "2026-08-30"},
		{"2026-08", "2026-08"},
		{"2026-W35", "2026-W35"},
	}
	for _, c := range cases {
		key, err := NewLeaderboardKey("g", c.in, now)
		if err != nil {
			t.Errorf("NewLeaderboardKey(%q) failed: %v", c.in, err)
			continue
		}
		if key.TimeFrame != c.want {
			t.Errorf("NewLeaderboardKey(%q): expected %q, got %q", c.in, c.want, key.TimeFrame)
		}
	}
}

func TestNewLeaderboardKey_Invalid(t *testing.T) {
	now := time.Now()
	for _, in := range []string{
		"yesterday",
		"2026-13-01", // month out of range
		"2026-02-30", // day out of range
		"2026-W54",   // week out of range
		"2026-W00",
		"26-01",
	} {
		if _, err := NewLeaderboardKey("g", in, now); !errors.Is(err, ErrInvalidTimeFrame) {
			t.Errorf("NewLeaderboardKey(%q): expected ErrInvalidTimeFrame, got %v", in, err)
		}
	}

	if _, err := NewLeaderboardKey("", "alltime", now); !errors.Is(err, ErrEmptyGameID) {
		t.Errorf("expected ErrEmptyGameID, got %v", err)
	}
}

func TestLeaderboardKey_StringAndLess(t *testing.T) {
	a := LeaderboardKey{GameID: "chess", TimeFrame: "alltime"}
	b := LeaderboardKey{GameID: "chess", TimeFrame: "2026-W35"}
	c := LeaderboardKey{GameID: "darts", TimeFrame: "alltime"}

	if a.String() != "chess/alltime" {
		t.Errorf("unexpected String: %s", a.String())
	}
	if !b.Less(a) { // "2026-W35" < "alltime"
		t.Error("expected week frame to sort before alltime")
	}
	if !a.Less(c) {
		t.Error("expected chess to sort before darts")
	}
}
