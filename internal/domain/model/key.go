// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// TimeFrameAllTime is the sentinel for the non-expiring partition.
const TimeFrameAllTime = "alltime"

var (
	dailyPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthlyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	weeklyPattern  = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)
)

// LeaderboardKey identifies one independent ranking partition.
// Distinct time frames never roll up into each other.
type LeaderboardKey struct {
	GameID    string
	TimeFrame string
}

// String renders the key as gameID/timeFrame for logs and map-free display.
func (k LeaderboardKey) String() string {
	return k.GameID + "/" + k.TimeFrame
}

// Less orders keys by game then time frame, for deterministic report output.
func (k LeaderboardKey) Less(other LeaderboardKey) bool {
	if k.GameID != other.GameID {
		return k.GameID < other.GameID
	}
	return k.TimeFrame < other.TimeFrame
}

// CurrentWeek formats now as an ISO-8601 week, e.g. "2026-W35".
func CurrentWeek(now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// NewLeaderboardKey validates gameID and canonicalizes timeFrame.
//
// Accepted time frames:
//   - ""            -> the current ISO week (weekly default)
//   - "YYYY-Www"    -> explicit ISO week
//   - "YYYY-MM-DD"  -> daily
//   - "YYYY-MM"     -> monthly
//   - "alltime"     -> the all-time partition
func NewLeaderboardKey(gameID, timeFrame string, now time.Time) (LeaderboardKey, error) {
	if gameID == "" {
		return LeaderboardKey{}, ErrEmptyGameID
	}
	tf, err := CanonicalTimeFrame(timeFrame, now)
	if err != nil {
		return LeaderboardKey{}, err
	}
	return LeaderboardKey{GameID: gameID, TimeFrame: tf}, nil
}

// CanonicalTimeFrame validates timeFrame and resolves the weekly default.
func CanonicalTimeFrame(timeFrame string, now time.Time) (string, error) {
	switch {
	case timeFrame == "":
		return CurrentWeek(now), nil
	case timeFrame == TimeFrameAllTime:
		return TimeFrameAllTime, nil
	case dailyPattern.MatchString(timeFrame):
		if _, err := time.Parse(time.DateOnly, timeFrame); err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidTimeFrame, timeFrame)
		}
		return timeFrame, nil
	case monthlyPattern.MatchString(timeFrame):
		if _, err := time.Parse("2006-01", timeFrame); err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidTimeFrame, timeFrame)
		}
		return timeFrame, nil
	default:
		m := weeklyPattern.FindStringSubmatch(timeFrame)
		if m == nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidTimeFrame, timeFrame)
		}
		week, err := strconv.Atoi(m[2])
		if err != nil || week < 1 || week > 53 {
			return "", fmt.Errorf("%w: %s", ErrInvalidTimeFrame, timeFrame)
		}
		return timeFrame, nil
	}
}
