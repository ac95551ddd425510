package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/podium/internal/domain/model"
)

// UserIndex is the reverse mapping from player to the partitions the player
// has a record in. It only grows on first submission to a partition; score
// improvements do not change the key set.
type UserIndex struct {
	mu       sync.RWMutex
	byPlayer map[string]map[model.LeaderboardKey]struct{}
}

// NewUserIndex constructs an empty membership index.
func NewUserIndex() *UserIndex {
	return &UserIndex{
		byPlayer: make(map[string]map[model.LeaderboardKey]struct{}),
	}
}

// RecordMembership adds key to the player's set. Idempotent.
func (u *UserIndex) RecordMembership(ctx context.Context, playerID string, key model.LeaderboardKey) {
	u.mu.Lock()
	defer u.mu.Unlock()

	set, ok := u.byPlayer[playerID]
	if !ok {
		set = make(map[model.LeaderboardKey]struct{})
		u.byPlayer[playerID] = set
	}
	set[key] = struct{}{}
}

// LeaderboardsFor returns the player's partitions sorted by game then time
// frame. Empty for players that never submitted.
func (u *UserIndex) LeaderboardsFor(ctx context.Context, playerID string) []model.LeaderboardKey {
	u.mu.RLock()
	defer u.mu.RUnlock()

	set, ok := u.byPlayer[playerID]
	if !ok {
		return nil
	}
	keys := make([]model.LeaderboardKey, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
