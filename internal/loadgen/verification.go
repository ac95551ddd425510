package loadgen

import (
	"fmt"
	"log"
	"sort"
)

// verifyResults checks rank and leaderboard consistency per game.
func verifyResults(config *Config, ranks []RankResult, pages map[string]LeaderboardPage) error {
	log.Println("verifying results...")

	if len(ranks) == 0 {
		return fmt.Errorf("no ranks to verify")
	}

	byGame := make(map[string][]RankResult)
	for _, r := range ranks {
		byGame[r.GameID] = append(byGame[r.GameID], r)
	}

	for game, gameRanks := range byGame {
		sorted := make([]RankResult, len(gameRanks))
		copy(sorted, gameRanks)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Score > sorted[j].Score
		})

		page, ok := pages[game]
		if !ok || len(page.Entries) == 0 {
			log.Printf("no leaderboard data for %s; skipping consistency check", game)
			continue
		}

		if err := verifyGameConsistency(sorted, page); err != nil {
			log.Printf("consistency warning for %s: %v", game, err)
		} else {
			log.Printf("leaderboard consistency verified for %s", game)
		}

		displayTopPerformers(game, sorted, page, config.Verbose)
	}

	log.Println("result verification completed")
	return nil
}

// verifyGameConsistency checks one game's leaderboard against its ranks.
func verifyGameConsistency(sorted []RankResult, page LeaderboardPage) error {
	topRank := sorted[0]
	topEntry := page.Entries[0]

	if topRank.Score != topEntry.Score {
		return fmt.Errorf("top leaderboard score (%d) does not match best retrieved score (%d)",
			topEntry.Score, topRank.Score)
	}

	// The leaderboard must be sorted by score descending.
	for i := 1; i < len(page.Entries); i++ {
		if page.Entries[i].Score > page.Entries[i-1].Score {
			return fmt.Errorf("leaderboard not sorted: entry %d outscores entry %d", i, i-1)
		}
	}

	// Every first-place rank result must actually have rank 1.
	for _, r := range sorted {
		if r.Score == topRank.Score && r.Rank != 1 {
			return fmt.Errorf("player %s has top score %d but rank %d", r.PlayerID, r.Score, r.Rank)
		}
	}

	return nil
}

// displayTopPerformers shows the best players per game.
func displayTopPerformers(game string, sorted []RankResult, page LeaderboardPage, verbose bool) {
	topN := 10
	if len(sorted) < topN {
		topN = len(sorted)
	}

	log.Printf("top %d retrieved ranks for %s:", topN, game)
	for i := 0; i < topN; i++ {
		r := sorted[i]
		log.Printf("   %d. %s - score: %d, rank: %d, band: %s", i+1, r.PlayerID, r.Score, r.Rank, r.Band)
	}

	if verbose && len(sorted) > 0 {
		log.Printf(`score statistics for %s:
   Best: %d
   Worst: %d
   Players on leaderboard: %d
`, game, sorted[0].Score, sorted[len(sorted)-1].Score, page.TotalPlayers)
	}
}
