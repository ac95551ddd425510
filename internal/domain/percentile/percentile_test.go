package percentile

import (
	"errors"
	"testing"
)

func TestFromRank(t *testing.T) {
	cases := []struct {
		rank  int
		total int
		want  int
	}{
		{1, 1, 100},
		{1, 100, 100},
		{2, 100, 99},
		{50, 100, 51},
		{100, 100, 1},
		{1, 3, 100},
		{2, 3, 67},
		{3, 3, 33},
	}
	for _, c := range cases {
		got, err := FromRank(c.rank, c.total)
		if err != nil {
			t.Errorf("FromRank(%d, %d) failed: %v", c.rank, c.total, err)
			continue
		}
		if got != c.want {
			t.Errorf("FromRank(%d, %d) = %d, want %d", c.rank, c.total, got, c.want)
		}
		if got < 0 || got > 100 {
			t.Errorf("FromRank(%d, %d) = %d outside [0,100]", c.rank, c.total, got)
		}
	}
}

func TestFromRank_EmptyPartition(t *testing.T) {
	if _, err := FromRank(1, 0); !errors.Is(err, ErrNoPlayers) {
		t.Errorf("expected ErrNoPlayers, got %v", err)
	}
}

func TestFromRank_OutOfRange(t *testing.T) {
	if _, err := FromRank(0, 10); !errors.Is(err, ErrRankOutOfRange) {
		t.Errorf("expected ErrRankOutOfRange for rank 0, got %v", err)
	}
	if _, err := FromRank(11, 10); !errors.Is(err, ErrRankOutOfRange) {
		t.Errorf("expected ErrRankOutOfRange for rank > total, got %v", err)
	}
}

func TestBand(t *testing.T) {
	cases := []struct {
		percentile int
		want       string
	}{
		{100, BandTop1},
		{99, BandTop1},
		{98, BandTop5},
		{95, BandTop5},
		{94, BandTop10},
		{90, BandTop10},
		{89, BandTop25},
		{75, BandTop25},
		{74, BandTop50},
		{50, BandTop50},
		{49, BandBottom75},
		{25, BandBottom75},
		{24, BandBottom90},
		{10, BandBottom90},
		{9, BandBottom95},
		{5, BandBottom95},
		{4, BandBottom99},
		{0, BandBottom99},
	}
	for _, c := range cases {
		if got := Band(c.percentile); got != c.want {
			t.Errorf("Band(%d) = %q, want %q", c.percentile, got, c.want)
		}
	}
}
