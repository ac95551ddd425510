package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// processingWait gives queued submissions time to drain before reads.
const processingWait = 5 * time.Second

// Run executes the complete load generation run.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting podium load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("submissions", config.NumSubmissions),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Any("games", config.Games),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate submissions
	subs, err := generateSubmissions(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("submission generation failed: %w", err)
	}

	// Step 3: Send submissions concurrently
	if err := sendSubmissions(ctx, config, subs, stats); err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	// Step 4: Wait for processing
	logger.Get().Info(ctx, "waiting for submissions to settle")
	time.Sleep(processingWait)

	// Step 5: Retrieve ranks concurrently
	ranks, err := retrieveRanks(ctx, config, subs, stats)
	if err != nil {
		return fmt.Errorf("rank retrieval failed: %w", err)
	}

	// Step 6: Get each game's leaderboard
	pages := make(map[string]LeaderboardPage, len(config.Games))
	for _, game := range config.Games {
		page, err := getLeaderboard(ctx, config, game, stats)
		if err != nil {
			return fmt.Errorf("leaderboard retrieval failed for %s: %w", game, err)
		}
		pages[game] = page
	}

	// Step 7: Verify results
	if err := verifyResults(config, ranks, pages); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	// Step 8: Save submissions to file
	if err := saveSubmissionsToFile(ctx, config, subs); err != nil {
		logger.Get().Warn(ctx, "failed to save submissions to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "load run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 counts as healthy (the endpoint serves Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveSubmissionsToFile saves the generated submissions to a JSON file.
func saveSubmissionsToFile(ctx context.Context, config *Config, subs []Submission) error {
	if len(subs) == 0 {
		return fmt.Errorf("no submissions to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "submissions_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(subs); err != nil {
		return fmt.Errorf("failed to write submissions: %w", err)
	}

	logger.Get().Info(ctx, "submissions saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, perSecond float64

	if stats.SubmissionsSent > 0 {
		acceptRate = float64(stats.SubmissionsAccepted) / float64(stats.SubmissionsSent) * 100
	}

	if stats.Duration > 0 {
		perSecond = float64(stats.SubmissionsSent) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("submissionsGenerated", stats.SubmissionsGenerated),
		logger.Int("submissionsSent", stats.SubmissionsSent),
		logger.Int("submissionsAccepted", stats.SubmissionsAccepted),
		logger.Int("submissionsDeclined", stats.SubmissionsDeclined),
		logger.Int("submissionsFailed", stats.SubmissionsFailed),
		logger.Int("ranksRetrieved", stats.RanksRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Any("acceptRate", acceptRate),
		logger.Any("submissionsPerSecond", perSecond))
}
