package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/podium/internal/loadgen"
)

// Default configuration constants.
const (
	defaultSubmissions = 10000
	defaultTopN        = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		submissions = flag.Int("submissions", defaultSubmissions, "Number of score submissions to generate")
		games       = flag.String("games", "chess,tetris,racer", "Comma-separated list of game IDs")
		timeFrame   = flag.String("timeframe", "", "Time frame for all submissions (default: current week)")
		topN        = flag.Int("top", defaultTopN, "Number of top entries to fetch per game")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile  = flag.String("output", "", "Output file for generated submissions (default: submissions_TIMESTAMP.json)")
		logFile     = flag.String("log", "", "Log file for run output (default: loadgen_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	if err := loadgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &loadgen.Config{
		BaseURL:        *baseURL,
		NumSubmissions: *submissions,
		Games:          strings.Split(*games, ","),
		TimeFrame:      *timeFrame,
		TopN:           *topN,
		Workers:        *workers,
		Timeout:        *timeout,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	if err := loadgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		return
	}
}
