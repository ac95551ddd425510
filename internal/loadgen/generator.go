package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/podium/pkg/logger"
)

// Score distribution tiers. Most players land mid-table; elite and
// bottom-feeder scores are rare, so leaderboards get realistic spreads.
const (
	scoreTierCount = 8

	casualMin   = 1_000
	casualRange = 9_000
	skilledMin  = 10_000
	skilledRang = 15_000
	eliteMin    = 25_000
	eliteRange  = 10_000
	noviceMin   = 100
	noviceRange = 900
	wideMin     = 100
	wideRange   = 34_900
)

// randInt64 returns a uniform random value in [0, n) using crypto/rand.
func randInt64(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateSubmissions creates the configured number of submissions with
// unique player IDs spread across the configured games.
func generateSubmissions(ctx context.Context, config *Config, stats *Stats) ([]Submission, error) {
	logger.Get().Info(ctx, "generating submissions",
		logger.Int("numSubmissions", config.NumSubmissions),
		logger.Int("games", len(config.Games)))

	subs := make([]Submission, config.NumSubmissions)

	// Pre-allocate player IDs to ensure uniqueness
	playerIDs := make([]string, config.NumSubmissions)
	for i := 0; i < config.NumSubmissions; i++ {
		playerIDs[i] = uuid.New().String()
	}

	type result struct {
		index int
		sub   Submission
		err   error
	}

	resultChan := make(chan result, config.NumSubmissions)

	workerCount := minInt(config.Workers, config.NumSubmissions)
	perWorker := config.NumSubmissions / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * perWorker
		end := start + perWorker
		if worker == workerCount-1 {
			end = config.NumSubmissions // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- result{index: i, err: ctx.Err()}
					return
				default:
					sub := generateSingleSubmission(i, playerIDs[i], config)
					resultChan <- result{index: i, sub: sub}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumSubmissions; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during generation: %w", ctx.Err())
		case r := <-resultChan:
			if r.err != nil {
				return nil, fmt.Errorf("failed to generate submission %d: %w", r.index, r.err)
			}
			subs[r.index] = r.sub
		}
	}

	stats.SubmissionsGenerated = len(subs)
	logger.Get().Info(ctx, "generated submissions successfully", logger.Int("count", len(subs)))

	return subs, nil
}

// generateSingleSubmission creates one submission for the given player.
func generateSingleSubmission(index int, playerID string, config *Config) Submission {
	game := config.Games[index%len(config.Games)]

	id := "sub_" + strconv.Itoa(index) + "_" +
		strconv.FormatInt(time.Now().Unix(), 10) + "_" +
		strconv.FormatInt(randInt64(10_000), 10)

	return Submission{
		SubmissionID: id,
		GameID:       game,
		TimeFrame:    config.TimeFrame,
		PlayerID:     playerID,
		Score:        generateTieredScore(),
	}
}

// generateTieredScore draws a score from one of several tiers.
func generateTieredScore() int64 {
	switch randInt64(scoreTierCount) {
	case 0, 1, 2:
		// Casual players, most common
		return casualMin + randInt64(casualRange)
	case 3, 4:
		// Skilled players
		return skilledMin + randInt64(skilledRang)
	case 5:
		// Elite players, rare
		return eliteMin + randInt64(eliteRange)
	case 6:
		// Novices
		return noviceMin + randInt64(noviceRange)
	default:
		// Anything goes
		return wideMin + randInt64(wideRange)
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
