// Package percentile computes percentiles and band labels from ranks.
package percentile

import (
	"fmt"
	"math"
)

// Band labels, best to worst. Boundaries are inclusive at the upper end of
// each band: percentile >= 99 classifies as Top 1%.
const (
	BandTop1     = "Top 1%"
	BandTop5     = "Top 5%"
	BandTop10    = "Top 10%"
	BandTop25    = "Top 25%"
	BandTop50    = "Top 50%"
	BandBottom75 = "Bottom 75%"
	BandBottom90 = "Bottom 90%"
	BandBottom95 = "Bottom 95%"
	BandBottom99 = "Bottom 99%"
)

// FromRank converts a competition rank into a percentile in [0,100].
//
// A rank can only exist for a player known to be in the partition, so
// totalPlayers >= 1 is an invariant of every caller path. A zero total here
// means the index is corrupted and the request must fail rather than divide
// by zero.
func FromRank(rank, totalPlayers int) (int, error) {
	if totalPlayers < 1 {
		return 0, fmt.Errorf("%w: total players %d", ErrNoPlayers, totalPlayers)
	}
	if rank < 1 || rank > totalPlayers {
		return 0, fmt.Errorf("%w: rank %d of %d", ErrRankOutOfRange, rank, totalPlayers)
	}
	p := (1 - float64(rank-1)/float64(totalPlayers)) * 100
	return int(math.Round(p)), nil
}

// Band classifies a percentile into one of the nine fixed bands.
func Band(percentile int) string {
	switch {
	case percentile >= 99:
		return BandTop1
	case percentile >= 95:
		return BandTop5
	case percentile >= 90:
		return BandTop10
	case percentile >= 75:
		return BandTop25
	case percentile >= 50:
		return BandTop50
	case percentile >= 25:
		return BandBottom75
	case percentile >= 10:
		return BandBottom90
	case percentile >= 5:
		return BandBottom95
	default:
		return BandBottom99
	}
}
