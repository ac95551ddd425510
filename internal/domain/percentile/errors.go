package percentile

import "errors"

// Sentinel kinds for percentile errors. ErrNoPlayers signals a corrupted
// index rather than user error; callers must surface it, not default it.
var (
	ErrNoPlayers      = errors.New("no players in partition")
	ErrRankOutOfRange = errors.New("rank out of range")
)
