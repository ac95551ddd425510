package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveRanks fetches each submitted player's rank concurrently.
func retrieveRanks(ctx context.Context, config *Config, subs []Submission, stats *Stats) ([]RankResult, error) {
	log.Printf("retrieving ranks for %d players with %d workers...", len(subs), config.Workers)

	client := newHTTPClient(config.Timeout)

	ranks := make([]RankResult, len(subs))
	var (
		retrieved int64
		failed    int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	indexChan := make(chan int, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					sub := subs[index]
					rank, err := retrieveSingleRank(ctx, client, config, sub)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("failed to get rank for %s in %s: %v", sub.PlayerID, sub.GameID, err)
						}
					} else {
						ranks[index] = rank
						atomic.AddInt64(&retrieved, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						log.Printf("rank progress: %d/%d (success: %d, failed: %d)",
							total, len(subs),
							atomic.LoadInt64(&retrieved),
							atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range subs {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Filter out empty entries (failed retrievals)
	valid := make([]RankResult, 0, len(ranks))
	for _, r := range ranks {
		if r.PlayerID != "" {
			valid = append(valid, r)
		}
	}

	stats.RanksRetrieved = len(valid)

	log.Printf(`rank retrieval completed:
   Retrieved: %d
   Failed: %d
`, len(valid), int(atomic.LoadInt64(&failed)))

	return valid, nil
}

// retrieveSingleRank fetches one player's rank.
func retrieveSingleRank(ctx context.Context, client *HTTPClient, config *Config, sub Submission) (RankResult, error) {
	u := fmt.Sprintf("%s/rank/%s/%s", config.BaseURL, url.PathEscape(sub.GameID), url.PathEscape(sub.PlayerID))
	if config.TimeFrame != "" {
		u += "?timeframe=" + url.QueryEscape(config.TimeFrame)
	}

	resp, err := client.Get(ctx, u)
	if err != nil {
		return RankResult{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return RankResult{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return RankResult{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rank RankResult
	if err := json.Unmarshal(body, &rank); err != nil {
		return RankResult{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return rank, nil
}

// getLeaderboard retrieves the top N entries for one game.
func getLeaderboard(ctx context.Context, config *Config, game string, stats *Stats) (LeaderboardPage, error) {
	log.Printf("getting top %d leaderboard entries for %s...", config.TopN, game)

	client := newHTTPClient(config.Timeout)
	u := fmt.Sprintf("%s/leaderboard?game=%s&count=%d", config.BaseURL, url.QueryEscape(game), config.TopN)
	if config.TimeFrame != "" {
		u += "&timeframe=" + url.QueryEscape(config.TimeFrame)
	}

	resp, err := client.Get(ctx, u)
	if err != nil {
		return LeaderboardPage{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return LeaderboardPage{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return LeaderboardPage{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var page LeaderboardPage
	if err := json.Unmarshal(body, &page); err != nil {
		return LeaderboardPage{}, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.LeaderboardEntries += len(page.Entries)
	log.Printf("retrieved %d leaderboard entries for %s", len(page.Entries), game)

	return page, nil
}
