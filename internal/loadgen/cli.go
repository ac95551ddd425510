package loadgen

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "loadgen_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the load generator.
func ShowHelp() {
	os.Stdout.WriteString(`Podium Load Generator
=====================

A concurrent tool for exercising the podium ranking service.

Usage:
  go run cmd/loadgen/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -submissions int
        Number of score submissions to generate (default 10000)
  -games string
        Comma-separated list of game IDs (default "chess,tetris,racer")
  -timeframe string
        Time frame for all submissions (default: current week)
  -top int
        Number of top entries to fetch per game (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated submissions (default: submissions_TIMESTAMP.json)
  -log string
        Log file for run output (default: loadgen_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run cmd/loadgen/main.go

  # Run with custom parameters
  go run cmd/loadgen/main.go -submissions 50000 -workers 16 -games chess,go

  # Run against the alltime partition
  go run cmd/loadgen/main.go -timeframe alltime -verbose
`)
}
