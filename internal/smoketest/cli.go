package smoketest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/homeval/pkg/logger"
)

// SetupLogging initialises the shared logger writing text to w.
func SetupLogging(w io.Writer, verbose bool) error {
	if err := logger.Init(logger.WithOutput(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`House Price API Smoke Test
==========================

Checks a running prediction service end to end: metadata, the default and
example vectors, random vectors posted concurrently, and malformed inputs.
Every prediction is recomputed locally and compared with the server.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:10000")
  -random int
        Number of random vectors to post (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -seed uint
        Seed for random vectors (default: current time)
  -verbose
        Log every prediction
  -help
        Show this help message

Examples:
  # Check a local server
  go run ./cmd/smoke

  # Hammer a deployed instance
  go run ./cmd/smoke -url https://homeval.example.com -random 5000 -workers 32
`)
}
